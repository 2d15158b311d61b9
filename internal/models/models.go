// Package models provides domain models for the options dashboard.
package models

import (
	"fmt"
	"strings"
)

// Asset represents an underlying asset tradeable on Deribit.
type Asset string

const (
	AssetBTC Asset = "BTC"
	AssetETH Asset = "ETH"
)

// ParseAsset parses a user-supplied asset symbol.
func ParseAsset(s string) (Asset, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BTC":
		return AssetBTC, nil
	case "ETH":
		return AssetETH, nil
	default:
		return "", fmt.Errorf("unknown asset %q (expected BTC or ETH)", s)
	}
}

// PerpetualInstrument returns the perpetual-swap instrument name for the asset.
func (a Asset) PerpetualInstrument() string {
	return string(a) + "-PERPETUAL"
}

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "Call"
	OptionPut  OptionType = "Put"
)

// ParseOptionType normalizes exchange or user casing ("call", "CALL", "Call").
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return OptionCall, nil
	case "put":
		return OptionPut, nil
	default:
		return "", fmt.Errorf("unknown option type %q (expected Call or Put)", s)
	}
}
