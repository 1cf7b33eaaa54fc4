// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = 512
)

// accountLimiter applies a token bucket per account id and periodically evicts idle entries
type accountLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	byId    map[string]*limiterEntry
	hits    uint64
	idleTTL time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newAccountLimiter returns nil, which allows everything, when rps or burst is not positive
func newAccountLimiter(rps float64, burst int) *accountLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &accountLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		byId:    make(map[string]*limiterEntry),
		idleTTL: limiterIdleTTL,
	}
}

// Allow reports whether a submission for id may proceed at now
func (l *accountLimiter) Allow(id string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byId[id]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(l.limit, l.burst),
		}
		l.byId[id] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%limiterSweepEvery == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byId {
			if v.lastSeen.Before(cutoff) {
				delete(l.byId, k)
			}
		}
	}
	return allowed
}
