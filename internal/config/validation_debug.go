//go:build !release

package config

const EnableValidationLayers = true
