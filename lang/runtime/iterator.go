package runtime

import "github.com/jaccomoc/jactl-sub011/lang/types"

// IterValue wraps an Iterator so it can itself be passed around, stored in
// a variable and chained, as the ITERATOR type. Each pipeline stage (map,
// filter, flatMap, limit, skip, unique, reverse, grouped) wraps an upstream
// Iterator in a new IterValue rather than eagerly materializing a List, so
// a long chain over a large or infinite source only pulls as many elements
// as the consumer actually asks for.
type IterValue struct {
	it Iterator
}

func NewIterValue(it Iterator) *IterValue { return &IterValue{it: it} }

func (v *IterValue) String() string    { return "Iterator" }
func (v *IterValue) Kind() types.Kind  { return types.ITERATOR }
func (v *IterValue) Truth() bool       { return true }
func (v *IterValue) Iterate() Iterator { return v.it }

// MapStage applies fn to each upstream value. fn may be async (may itself
// suspend the frame driving the iteration); the caller is responsible for
// running it through the execution engine and feeding the result back in,
// which is why fn is a plain Go closure over that machinery rather than a
// Function value baked in here.
func MapStage(upstream Iterator, fn func(Value) (Value, error)) Iterator {
	return iteratorFunc(func() (Value, bool, error) {
		v, ok, err := upstream.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		out, err := fn(v)
		return out, err == nil, err
	})
}

// FilterStage keeps only upstream values for which pred returns true.
func FilterStage(upstream Iterator, pred func(Value) (bool, error)) Iterator {
	return iteratorFunc(func() (Value, bool, error) {
		for {
			v, ok, err := upstream.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			keep, err := pred(v)
			if err != nil {
				return nil, false, err
			}
			if keep {
				return v, true, nil
			}
		}
	})
}

// FlatMapStage applies fn to each upstream value, expecting an Iterable
// result, and yields the concatenation of all the produced sub-sequences.
func FlatMapStage(upstream Iterator, fn func(Value) (Iterable, error)) Iterator {
	var cur Iterator
	return iteratorFunc(func() (Value, bool, error) {
		for {
			if cur != nil {
				v, ok, err := cur.Next()
				if err != nil {
					return nil, false, err
				}
				if ok {
					return v, true, nil
				}
				cur = nil
			}
			v, ok, err := upstream.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			sub, err := fn(v)
			if err != nil {
				return nil, false, err
			}
			cur = sub.Iterate()
		}
	})
}

// LimitStage yields at most n upstream values.
func LimitStage(upstream Iterator, n int) Iterator {
	remaining := n
	return iteratorFunc(func() (Value, bool, error) {
		if remaining <= 0 {
			return nil, false, nil
		}
		remaining--
		return upstream.Next()
	})
}

// SkipStage discards the first n upstream values, then yields the rest.
func SkipStage(upstream Iterator, n int) Iterator {
	skipped := false
	return iteratorFunc(func() (Value, bool, error) {
		if !skipped {
			skipped = true
			for i := 0; i < n; i++ {
				_, ok, err := upstream.Next()
				if err != nil || !ok {
					return nil, ok, err
				}
			}
		}
		return upstream.Next()
	})
}

// GroupedStage batches upstream values into Lists of size n (the last batch
// may be shorter).
func GroupedStage(upstream Iterator, n int) Iterator {
	exhausted := false
	return iteratorFunc(func() (Value, bool, error) {
		if exhausted {
			return nil, false, nil
		}
		batch := make([]Value, 0, n)
		for len(batch) < n {
			v, ok, err := upstream.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				exhausted = true
				break
			}
			batch = append(batch, v)
		}
		if len(batch) == 0 {
			return nil, false, nil
		}
		return NewList(batch), true, nil
	})
}

// UniqueStage yields upstream values the first time they are seen, by their
// String() representation; this fully drains upstream lazily but must keep
// a growing seen-set, unlike the other stateless stages.
func UniqueStage(upstream Iterator) Iterator {
	seen := make(map[string]struct{})
	return iteratorFunc(func() (Value, bool, error) {
		for {
			v, ok, err := upstream.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			key := v.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			return v, true, nil
		}
	})
}

// ReverseStage is necessarily eager: reversal needs the full sequence
// before it can yield its first element. It materializes upstream once,
// on the first Next call, then replays it back to front.
func ReverseStage(upstream Iterator) Iterator {
	var buf []Value
	var loaded bool
	i := -1
	return iteratorFunc(func() (Value, bool, error) {
		if !loaded {
			for {
				v, ok, err := upstream.Next()
				if err != nil {
					return nil, false, err
				}
				if !ok {
					break
				}
				buf = append(buf, v)
			}
			loaded = true
			i = len(buf)
		}
		i--
		if i < 0 {
			return nil, false, nil
		}
		return buf[i], true, nil
	})
}

// Drain exhausts it into a List, used when a pipeline result must be
// materialized (e.g. assigned to a List-typed variable or printed).
func Drain(it Iterator) (*List, error) {
	var elems []Value
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return NewList(elems), nil
		}
		elems = append(elems, v)
	}
}
