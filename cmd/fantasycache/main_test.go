package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/fantasycache/internal/cli"
)

func TestRootCommandWiring(t *testing.T) {
	root := cli.NewRootCmd(version)
	assert.Equal(t, "fantasycache", root.Use)
	assert.NotEmpty(t, root.Version)

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"stats", "sweep", "clear"})
}
