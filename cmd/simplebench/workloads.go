package main

import (
	"crypto/sha256"
	"encoding/json"
	"math/rand"
	"sort"
	"strconv"

	"simplebench/internal/measure"
	"simplebench/internal/registry"
)

// Reference workloads exercising the three setup disciplines. They double
// as a smoke test for the whole pipeline on any machine.
func init() {
	registry.Register("sort_ints", "sorting", measure.SetupEach(
		func() []int {
			rng := rand.New(rand.NewSource(42))
			data := make([]int, 10_000)
			for i := range data {
				data[i] = rng.Int()
			}
			return data
		},
		func(data []int) { sort.Ints(data) },
	))

	registry.Register("sort_presorted", "sorting", measure.SetupEach(
		func() []int {
			data := make([]int, 10_000)
			for i := range data {
				data[i] = i
			}
			return data
		},
		func(data []int) { sort.Ints(data) },
	))

	registry.Register("hash_bytes", "hashing", measure.SetupOnce(
		func() []byte {
			rng := rand.New(rand.NewSource(42))
			data := make([]byte, 64*1024)
			rng.Read(data)
			return data
		},
		func(data *[]byte) { sha256.Sum256(*data) },
	))

	registry.Register("json_marshal", "encoding", measure.SetupOnce(
		func() map[string]any {
			doc := make(map[string]any, 100)
			for i := 0; i < 100; i++ {
				doc[strconv.Itoa(i)] = []any{i, strconv.Itoa(i * i), float64(i) / 3}
			}
			return doc
		},
		func(doc *map[string]any) {
			if _, err := json.Marshal(*doc); err != nil {
				panic(err)
			}
		},
	))

	registry.Register("append_grow", "alloc", measure.NoSetup(func() {
		var s []int
		for i := 0; i < 10_000; i++ {
			s = append(s, i)
		}
	}))
}
