// Package cache provides an LRU cache of analysis results with disk persistence.
package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/autofree/pkg/points"
	"github.com/l3aro/autofree/pkg/store"
)

// Result is the cached outcome of one analysis. The accepted count is
// len(Points).
type Result struct {
	Points     []points.Point `msgpack:"points"`
	Candidates int            `msgpack:"candidates"`
	Rejected   int            `msgpack:"rejected"`
}

func (r Result) clone() Result {
	out := r
	out.Points = make([]points.Point, len(r.Points))
	copy(out.Points, r.Points)
	return out
}

// Entry is one cached analysis result.
type Entry struct {
	Key        string    `msgpack:"key"`
	Result     Result    `msgpack:"result"`
	AccessedAt time.Time `msgpack:"accessed_at"`
	CreatedAt  time.Time `msgpack:"created_at"`
}

// LRUCache is an in-memory LRU cache of analysis results keyed by
// content digest.
type LRUCache struct {
	mu      sync.Mutex
	items   map[string]*listItem
	lru     *list // most recent at front
	maxSize int
	onEvict func(key string)
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

func (l *list) unlink(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

func (l *list) pushFront(item *listItem) {
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.unlink(item)
	l.pushFront(item)
}

// Options configures the LRU cache.
type Options struct {
	// MaxSize is the maximum number of entries.
	// 0 means unlimited.
	MaxSize int

	// OnEvict is called when an entry is evicted.
	OnEvict func(key string)
}

// New creates a new LRU cache with the given options.
func New(opts Options) *LRUCache {
	return &LRUCache{
		items:   make(map[string]*listItem),
		lru:     &list{},
		maxSize: opts.MaxSize,
		onEvict: opts.OnEvict,
	}
}

// Get returns a copy of the cached result for key.
func (c *LRUCache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return Result{}, false
	}

	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Result.clone(), true
}

// Set stores the result for key, evicting the least recently used entry
// when the cache is full.
func (c *LRUCache) Set(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := r.clone()
	now := time.Now()

	if item, exists := c.items[key]; exists {
		item.Result = stored
		item.AccessedAt = now
		c.lru.moveToFront(item)
		return
	}

	item := &listItem{
		Entry: Entry{
			Key:        key,
			Result:     stored,
			AccessedAt: now,
			CreatedAt:  now,
		},
	}
	c.items[key] = item
	c.lru.pushFront(item)
	c.evictIfNeeded()
}

// Len returns the number of entries in the cache.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache) evictIfNeeded() {
	for c.maxSize > 0 && c.lru.len > c.maxSize {
		item := c.lru.tail
		c.lru.unlink(item)
		delete(c.items, item.Key)
		if c.onEvict != nil {
			c.onEvict(item.Key)
		}
	}
}

// Save persists the cache to a writer using msgpack, most recent first.
func (c *LRUCache) Save(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, c.lru.len)
	for item := c.lru.head; item != nil; item = item.next {
		entries = append(entries, item.Entry)
	}

	enc := msgpack.NewEncoder(w)
	return enc.Encode(entries)
}

// Load restores the cache from a reader using msgpack, replacing its
// contents. A key seen twice keeps its first, most recent entry. Entries
// beyond MaxSize are dropped from the old end.
func (c *LRUCache) Load(r io.Reader) error {
	var entries []Entry
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(entries))
	unique := entries[:0]
	for _, e := range entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		unique = append(unique, e)
	}

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	for i := len(unique) - 1; i >= 0; i-- {
		item := &listItem{Entry: unique[i]}
		c.items[item.Key] = item
		c.lru.pushFront(item)
	}
	c.evictIfNeeded()
	return nil
}

// PersistToFile saves the cache to location through st.
func PersistToFile(ctx context.Context, st *store.Store, c *LRUCache, location string) error {
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return st.Write(ctx, location, buf.Bytes())
}

// LoadFromFile loads the cache from location through st. A missing file
// leaves the cache empty.
func LoadFromFile(ctx context.Context, st *store.Store, c *LRUCache, location string) error {
	if !st.Exists(ctx, location) {
		return nil
	}
	data, err := st.Read(ctx, location)
	if err != nil {
		return err
	}
	return c.Load(bytes.NewReader(data))
}
