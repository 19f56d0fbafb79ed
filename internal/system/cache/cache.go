/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/wso2/profile-server/internal/system/log"
)

type item[V any] struct {
	value      V
	expiration time.Time
}

// Cache is a keyed store whose entries expire after a fixed TTL. A zero TTL keeps
// entries until they are deleted.
type Cache[V any] struct {
	items map[string]item[V]
	mutex sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewCache creates a new cache with a TTL (time-to-live)
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Set adds an item to the cache
func (c *Cache[V]) Set(key string, value V) {

	log.GetLogger().Debug(fmt.Sprint("Setting cache for key: ", key))
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration time.Time
	if c.ttl > 0 {
		expiration = c.now().Add(c.ttl)
	}
	c.items[key] = item[V]{
		value:      value,
		expiration: expiration,
	}
}

// Get retrieves an item from the cache
func (c *Cache[V]) Get(key string) (V, bool) {

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var zero V
	entry, found := c.items[key]
	if !found {
		return zero, false
	}
	if c.expired(entry) {
		log.GetLogger().Debug(fmt.Sprint("Cache expired for key: ", key))
		return zero, false
	}
	return entry.value, true
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	n := 0
	for _, entry := range c.items {
		if !c.expired(entry) {
			n++
		}
	}
	return n
}

// Purge drops expired entries.
func (c *Cache[V]) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, entry := range c.items {
		if c.expired(entry) {
			delete(c.items, key)
		}
	}
}

func (c *Cache[V]) expired(entry item[V]) bool {
	return !entry.expiration.IsZero() && c.now().After(entry.expiration)
}
