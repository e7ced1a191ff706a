package gocc_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/hupe1980/gocc"
	"github.com/hupe1980/gocc/buffer"
	"github.com/hupe1980/gocc/list"
	"github.com/hupe1980/gocc/ordmap"
	"github.com/hupe1980/gocc/pqueue"
)

// Example_entryChaining demonstrates the entry state machine on an
// ordered map: query once, then chain modify and insert steps.
func Example_entryChaining() {
	counts := ordmap.New[string, int]()

	for _, word := range []string{"go", "cc", "go"} {
		counts.Entry(word).AndModify(func(v *int) { *v++ }).OrInsert(1)
	}

	for cur := counts.Begin(); cur != nil; cur = counts.Next(cur) {
		fmt.Printf("%s=%d\n", cur.Key, cur.Value)
	}
	// Output:
	// cc=1
	// go=2
}

// Example_equalRange demonstrates bounded queries over the sorted order.
func Example_equalRange() {
	m := ordmap.New[int, string]()
	for _, k := range []int{1, 3, 5, 6, 9} {
		if _, err := m.Emplace(k, "v"); err != nil {
			log.Fatal(err)
		}
	}

	for cur := range m.EqualRange(3, 7).All() {
		fmt.Println(cur.Key)
	}
	// Output:
	// 3
	// 5
	// 6
}

// Example_priorityHandles demonstrates handle-based priority updates.
func Example_priorityHandles() {
	q, err := pqueue.New[int, string]()
	if err != nil {
		log.Fatal(err)
	}

	q.Push(5, "write")
	h, _ := q.Push(8, "flush")
	q.Push(3, "read")

	// Promote "flush" to the front of the min-heap.
	if err := q.Decrease(h, 0); err != nil {
		log.Fatal(err)
	}

	for {
		key, task, ok := q.Pop()
		if !ok {
			break
		}
		fmt.Printf("%d %s\n", key, task)
	}
	// Output:
	// 0 flush
	// 3 read
	// 5 write
}

// Example_splice demonstrates moving elements between lists without copying.
func Example_splice() {
	pending := list.New[string]()
	pending.PushBack("a")
	pending.PushBack("b")
	active := list.New[string]()

	if err := active.Splice(nil, pending, pending.Front()); err != nil {
		log.Fatal(err)
	}

	fmt.Println(*active.Front(), pending.Count())
	// Output: a 1
}

// Example_fixedBuffer demonstrates a fixed container over caller-owned
// storage answering growth with a capacity error instead of reallocating.
func Example_fixedBuffer() {
	b, err := buffer.New(func(o *buffer.Options[int]) {
		o.Slice = make([]int, 2)
	})
	if err != nil {
		log.Fatal(err)
	}

	b.PushBack(1)
	b.PushBack(2)
	if _, err := b.PushBack(3); errors.Is(err, gocc.ErrCapacity) {
		fmt.Println("full")
	}
	// Output: full
}
