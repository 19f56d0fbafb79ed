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

// Package diff computes structural differences between two JSON-like trees and checks them
// against per-kind allow-lists of changes permitted on published content.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gowebpki/jcs"
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Path addresses a node in a tree. Elements are string map keys or int array indexes.
type Path []interface{}

// String renders the path as rules[0].presence.
func (p Path) String() string {
	var sb strings.Builder
	for _, el := range p {
		switch v := el.(type) {
		case int:
			sb.WriteString("[" + strconv.Itoa(v) + "]")
		default:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(fmt.Sprint(v))
		}
	}
	return sb.String()
}

// Key returns the string key at position i, or "" when the element is an index or missing.
func (p Path) Key(i int) string {
	if i >= len(p) {
		return ""
	}
	s, _ := p[i].(string)
	return s
}

func (p Path) with(el interface{}) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = el
	return next
}

// Change is one difference. Value is the new value and Previous the old one; either is nil
// for additions and deletions respectively.
type Change struct {
	Path     Path
	Action   Action
	Value    interface{}
	Previous interface{}
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Action, c.Path)
}

// Options tunes array pairing.
type Options struct {
	// ObjectKeys lists discriminating keys in priority order. The first key present on every
	// element of an object array is used to pair and sort its elements.
	ObjectKeys []string
}

// DefaultOptions pairs object arrays by id, then by rule location.
var DefaultOptions = Options{ObjectKeys: []string{"id", "location"}}

// Normalize converts v into a plain tree of maps, slices and scalars, drops null values,
// false object members and empty collections, then sorts every array.
func Normalize(v interface{}, opts Options) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return sortTree(prune(tree), opts), nil
}

func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			// A false flag reads the same as an absent one.
			if c := prune(child); c != nil && c != false {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, child := range t {
			if c := prune(child); c != nil {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

func sortTree(v interface{}, opts Options) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = sortTree(child, opts)
		}
		return t
	case []interface{}:
		for i, child := range t {
			t[i] = sortTree(child, opts)
		}
		if allScalars(t) {
			sort.SliceStable(t, func(i, j int) bool { return scalarKey(t[i]) < scalarKey(t[j]) })
		} else if key, ok := discriminator(opts, t); ok {
			sort.SliceStable(t, func(i, j int) bool {
				return scalarKey(t[i].(map[string]interface{})[key]) < scalarKey(t[j].(map[string]interface{})[key])
			})
		}
		return t
	default:
		return v
	}
}

// Equivalent reports whether two normalized trees have the same canonical JSON form.
func Equivalent(a, b interface{}) (bool, error) {
	ca, err := canonical(a)
	if err != nil {
		return false, err
	}
	cb, err := canonical(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ca, cb), nil
}

func canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// Diff normalizes both trees and returns every change from old to new.
func Diff(old, new interface{}, opts Options) ([]Change, error) {
	a, err := Normalize(old, opts)
	if err != nil {
		return nil, err
	}
	b, err := Normalize(new, opts)
	if err != nil {
		return nil, err
	}
	var changes []Change
	for c := range Changes(a, b, opts) {
		changes = append(changes, c)
	}
	return changes, nil
}

// Changes walks two normalized trees lazily so callers can stop at the first change they
// reject.
func Changes(old, new interface{}, opts Options) iter.Seq[Change] {
	return func(yield func(Change) bool) {
		walk(nil, old, new, opts, yield)
	}
}

func walk(path Path, a, b interface{}, opts Options, yield func(Change) bool) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return yield(Change{Path: path, Action: ActionAdd, Value: b})
	case b == nil:
		return yield(Change{Path: path, Action: ActionDelete, Previous: a})
	}

	am, aIsMap := a.(map[string]interface{})
	bm, bIsMap := b.(map[string]interface{})
	if aIsMap && bIsMap {
		return walkMaps(path, am, bm, opts, yield)
	}
	as, aIsSlice := a.([]interface{})
	bs, bIsSlice := b.([]interface{})
	if aIsSlice && bIsSlice {
		return walkSlices(path, as, bs, opts, yield)
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	return yield(Change{Path: path, Action: ActionUpdate, Value: b, Previous: a})
}

func walkMaps(path Path, a, b map[string]interface{}, opts Options, yield func(Change) bool) bool {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !walk(path.with(k), a[k], b[k], opts, yield) {
			return false
		}
	}
	return true
}

func walkSlices(path Path, a, b []interface{}, opts Options, yield func(Change) bool) bool {
	if allScalars(a) && allScalars(b) {
		return walkSets(path, a, b, yield)
	}
	if allMaps(a) && allMaps(b) {
		joined := append(append([]interface{}{}, a...), b...)
		if key, ok := discriminator(opts, joined); ok {
			return walkKeyed(path, key, a, b, opts, yield)
		}
	}
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var av, bv interface{}
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if !walk(path.with(i), av, bv, opts, yield) {
			return false
		}
	}
	return true
}

// walkSets compares scalar arrays as unordered value sets.
func walkSets(path Path, a, b []interface{}, yield func(Change) bool) bool {
	inA := make(map[string]int, len(a))
	for _, v := range a {
		inA[scalarKey(v)]++
	}
	inB := make(map[string]int, len(b))
	for _, v := range b {
		inB[scalarKey(v)]++
	}
	for i, v := range a {
		k := scalarKey(v)
		if inB[k] > 0 {
			inB[k]--
			continue
		}
		if !yield(Change{Path: path.with(i), Action: ActionDelete, Previous: v}) {
			return false
		}
	}
	for i, v := range b {
		k := scalarKey(v)
		if inA[k] > 0 {
			inA[k]--
			continue
		}
		if !yield(Change{Path: path.with(i), Action: ActionAdd, Value: v}) {
			return false
		}
	}
	return true
}

// walkKeyed pairs object elements sharing the same discriminator value so that an element
// whose content changed is reported as an update under its new index.
func walkKeyed(path Path, key string, a, b []interface{}, opts Options, yield func(Change) bool) bool {
	pending := make(map[string][]int)
	for i, v := range a {
		k := scalarKey(v.(map[string]interface{})[key])
		pending[k] = append(pending[k], i)
	}
	matched := make([]bool, len(a))
	for j, v := range b {
		k := scalarKey(v.(map[string]interface{})[key])
		if idx := pending[k]; len(idx) > 0 {
			pending[k] = idx[1:]
			matched[idx[0]] = true
			if !walk(path.with(j), a[idx[0]], v, opts, yield) {
				return false
			}
			continue
		}
		if !yield(Change{Path: path.with(j), Action: ActionAdd, Value: v}) {
			return false
		}
	}
	for i, v := range a {
		if matched[i] {
			continue
		}
		if !yield(Change{Path: path.with(i), Action: ActionDelete, Previous: v}) {
			return false
		}
	}
	return true
}

func discriminator(opts Options, elements []interface{}) (string, bool) {
	if len(elements) == 0 || !allMaps(elements) {
		return "", false
	}
	for _, key := range opts.ObjectKeys {
		found := true
		for _, el := range elements {
			v, ok := el.(map[string]interface{})[key]
			if !ok || !isScalar(v) {
				found = false
				break
			}
		}
		if found {
			return key, true
		}
	}
	return "", false
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	default:
		return true
	}
}

func allScalars(s []interface{}) bool {
	for _, v := range s {
		if !isScalar(v) {
			return false
		}
	}
	return true
}

func allMaps(s []interface{}) bool {
	for _, v := range s {
		if _, ok := v.(map[string]interface{}); !ok {
			return false
		}
	}
	return true
}

func scalarKey(v interface{}) string {
	return fmt.Sprintf("%T:%v", v, v)
}
