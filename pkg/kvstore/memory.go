package kvstore

import (
	"fmt"
	"path"
	"strconv"
	"sync"
)

// Memory is an in-process KVStore used by the test suites. It mirrors
// the Redis command semantics the services rely on.
type Memory struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
	hashes  map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
		hashes:  make(map[string]map[string]string),
	}
}

var errNoSuchKey = fmt.Errorf("no such key")

func asString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.strings[key]
	if !ok {
		return "", errNoSuchKey
	}
	return v, nil
}

func (m *Memory) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[key] = asString(value)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strings, key)
	delete(m.lists, key)
	delete(m.hashes, key)
	return nil
}

func (m *Memory) Keys(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	match := func(key string) {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	for k := range m.strings {
		match(k)
	}
	for k := range m.lists {
		match(k)
	}
	for k := range m.hashes {
		match(k)
	}
	return keys, nil
}

func (m *Memory) LPush(key string, values ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		m.lists[key] = append([]string{asString(v)}, m.lists[key]...)
	}
	return nil
}

func (m *Memory) RPush(key string, values ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		m.lists[key] = append(m.lists[key], asString(v))
	}
	return nil
}

func (m *Memory) LPop(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[key]
	if len(l) == 0 {
		return "", errNoSuchKey
	}
	v := l[0]
	m.lists[key] = l[1:]
	return v, nil
}

func (m *Memory) RPop(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.lists[key]
	if len(l) == 0 {
		return "", errNoSuchKey
	}
	v := l[len(l)-1]
	m.lists[key] = l[:len(l)-1]
	return v, nil
}

func (m *Memory) LLen(key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.lists[key])), nil
}

func (m *Memory) LIndex(key string, index int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.lists[key]
	if index < 0 {
		index += int64(len(l))
	}
	if index < 0 || index >= int64(len(l)) {
		return "", errNoSuchKey
	}
	return l[index], nil
}

func (m *Memory) LRange(key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

func (m *Memory) LRem(key string, count int64, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := asString(value)
	removed := int64(0)
	var kept []string
	for _, v := range m.lists[key] {
		if v == want && (count == 0 || removed < count) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	m.lists[key] = kept
	return nil
}

func (m *Memory) HSet(key, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	m.hashes[key][field] = asString(value)
	return nil
}

func (m *Memory) HGet(key, field string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.hashes[key][field]
	if !ok {
		return "", errNoSuchKey
	}
	return v, nil
}

func (m *Memory) HGetAll(key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) HDel(key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *Memory) INCR(key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.strings[key], 10, 64)
	n++
	m.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *Memory) DECR(key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.strings[key], 10, 64)
	n--
	m.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}
