package config

import (
	"bytes"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/stepwise/internal/errors"
)

// Keys lists every setting in dotted form, e.g. "engine.poll_interval".
func Keys() []string {
	tree, err := DefaultRuntimeConfig().tree()
	if err != nil {
		return nil
	}
	var keys []string
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, v := range node {
			if child, ok := v.(map[string]any); ok {
				walk(prefix+k+".", child)
				continue
			}
			keys = append(keys, prefix+k)
		}
	}
	walk("", tree)
	slices.Sort(keys)
	return keys
}

// Get returns the value stored under a dotted key. A section key returns
// the whole section and an empty key the whole config.
func (c *RuntimeConfig) Get(key string) (any, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return tree, nil
	}
	var node any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, unknownKey(key)
		}
		if node, ok = m[part]; !ok {
			return nil, unknownKey(key)
		}
	}
	return node, nil
}

// Set parses value as a YAML scalar and stores it under a dotted key. The
// result must still validate; on error c is unchanged.
func (c *RuntimeConfig) Set(key, value string) error {
	tree, err := c.tree()
	if err != nil {
		return err
	}
	parts := strings.Split(key, ".")
	node := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			return unknownKey(key)
		}
		node = child
	}
	leaf := parts[len(parts)-1]
	if current, ok := node[leaf]; !ok {
		return unknownKey(key)
	} else if _, section := current.(map[string]any); section {
		return unknownKey(key)
	}

	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
		v = value
	}
	node[leaf] = v

	data, err := yaml.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	next := DefaultRuntimeConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(next); err != nil {
		return errors.NewUserErrorWithField(key, value, "invalid value for "+key, "").
			WithCause(errors.ErrConfigInvalid)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// tree renders the config as nested maps keyed by YAML names.
func (c *RuntimeConfig) tree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return tree, nil
}

func unknownKey(key string) error {
	return errors.NewUserErrorWithField("key", key, "Unknown config key",
		"Run 'stepwise config keys' to list the settings.").
		WithCause(errors.ErrConfigInvalid)
}
