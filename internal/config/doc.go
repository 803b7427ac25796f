// Package config loads, validates and persists the publish manifest: the
// main template path, the staging directory and the ordered package list.
package config
