package main

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// writeFixture msgpack-encodes posts and writes them to path.
func writeFixture(path string, posts []Post) error {
	data, err := msgpack.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// readFixture loads and msgpack-decodes a fixture previously written by
// writeFixture.
func readFixture(path string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var posts []Post
	if err := msgpack.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("unmarshal fixture: %w", err)
	}
	return posts, nil
}
