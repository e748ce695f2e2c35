package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github/chapool/custody-signer/internal/util"
)

type components struct {
	Skipped *int `wire:"-"`
	Name    string
	Value   *int
}

func TestIsStructInitialized(t *testing.T) {
	one := 1

	assert.NoError(t, util.IsStructInitialized(&components{Name: "a", Value: &one}))
	assert.NoError(t, util.IsStructInitialized(components{Name: "a", Value: &one}))

	err := util.IsStructInitialized(&components{Name: "a"})
	assert.EqualError(t, err, "field Value is not initialized")

	var nilPtr *components
	assert.Error(t, util.IsStructInitialized(nilPtr))
	assert.Error(t, util.IsStructInitialized(42))
}
