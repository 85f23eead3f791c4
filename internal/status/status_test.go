package status

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		symbol   string
		wantType Type
		wantNext string
	}{
		{" ", TypeTodo, "x"},
		{"/", TypeInProgress, "x"},
		{"x", TypeDone, " "},
		{"-", TypeCancelled, " "},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got := r.BySymbol(tt.symbol)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantNext, got.NextSymbol)
			assert.True(t, got.AvailableAsCommand)
		})
	}
	assert.Len(t, r.All(), 4)
}

func TestRegistryAddFirstWins(t *testing.T) {
	r := NewRegistry()

	added := r.Add(Status{Symbol: "x", Name: "Finished", NextSymbol: "/", Type: TypeDone})
	assert.False(t, added)
	assert.Equal(t, "Done", r.BySymbol("x").Name)

	added = r.Add(Status{Symbol: "?", Name: "Question", NextSymbol: "x", AvailableAsCommand: true, Type: TypeNonTask})
	assert.True(t, added)
	assert.Equal(t, "Question", r.BySymbol("?").Name)
	assert.Len(t, r.All(), 5)
}

func TestRegistryBySymbolMissing(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.BySymbol("~").IsEmpty())

	got := r.BySymbolOrCreate("~")
	assert.Equal(t, "~", got.Symbol)
	assert.Equal(t, "Unknown", got.Name)
	assert.Equal(t, TypeTodo, got.Type)
	assert.Equal(t, "x", got.NextSymbol)
	assert.False(t, got.AvailableAsCommand)
}

func TestRegistryNext(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, Done(), r.NextOrCreate(Todo()))
	assert.Equal(t, Todo(), r.NextOrCreate(Done()))
	assert.Equal(t, Done(), r.NextOrCreate(InProgress()))
	assert.Equal(t, Todo(), r.NextOrCreate(Cancelled()))
	assert.True(t, r.Next(Empty).IsEmpty())

	orphan := Status{Symbol: "!", Name: "Important", NextSymbol: "%", Type: TypeTodo}
	next := r.NextOrCreate(orphan)
	assert.Equal(t, Unknown("%"), next)
}

func TestStatusIdentical(t *testing.T) {
	assert.True(t, Todo().Identical(Todo()))
	assert.False(t, Todo().Identical(Done()))

	renamed := Todo()
	renamed.Name = "Open"
	assert.False(t, Todo().Identical(renamed))

	hidden := Todo()
	hidden.AvailableAsCommand = false
	assert.False(t, Todo().Identical(hidden))
}

func TestStatusValidate(t *testing.T) {
	require.NoError(t, Done().Validate())
	require.NoError(t, Unknown("~").Validate())

	err := Status{Symbol: "xx", Type: TypeTodo}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidSymbol))

	err = Status{Symbol: "z", Type: Type("LATER")}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidType))

	err = Status{Symbol: "z", Type: TypeEmpty}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidType))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	symbols := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Add(Status{Symbol: sym, Name: sym, NextSymbol: "x", Type: TypeTodo})
		}()
		go func() {
			defer wg.Done()
			_ = r.BySymbolOrCreate(sym)
		}()
	}
	wg.Wait()

	assert.Len(t, r.All(), 4+len(symbols))
}
