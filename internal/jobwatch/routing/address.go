package routing

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ClusterIdPlaceholder is replaced with the cluster id in AddressConfig.Pattern.
const ClusterIdPlaceholder = "{CLUSTER_ID}"

// Offset between the primary server port and the Binoculars port when neither a pattern
// nor an override is configured.
const DerivedPortOffset = 2

// Strategy records which rule produced a route's address.
type Strategy int

const (
	StrategyPattern Strategy = iota
	StrategyOverride
	StrategyDerived
)

func (s Strategy) String() string {
	switch s {
	case StrategyPattern:
		return "pattern"
	case StrategyOverride:
		return "override"
	case StrategyDerived:
		return "derived"
	default:
		return "unknown"
	}
}

type AddressConfig struct {
	// e.g. "binoculars-{CLUSTER_ID}.example.com:443"
	Pattern string
	// Used for every cluster when set and Pattern is empty.
	Override string
	// Address of the main Armada server, the source for derivation.
	PrimaryAddress string
}

// ErrNoRoute is returned when no log backend address can be derived for a cluster.
type ErrNoRoute struct {
	ClusterId string
	Message   string
}

func (err *ErrNoRoute) Error() string {
	return fmt.Sprintf("no binoculars route for cluster %q: %s", err.ClusterId, err.Message)
}

// DeriveAddress returns the log backend address for clusterId. The pattern wins over the
// override, which wins over derivation from the primary address.
func DeriveAddress(cfg AddressConfig, clusterId string) (string, Strategy, error) {
	if cfg.Pattern != "" {
		return strings.ReplaceAll(cfg.Pattern, ClusterIdPlaceholder, clusterId), StrategyPattern, nil
	}
	if cfg.Override != "" {
		return cfg.Override, StrategyOverride, nil
	}
	address, err := DeriveFromPrimary(cfg.PrimaryAddress)
	if err != nil {
		return "", StrategyDerived, &ErrNoRoute{ClusterId: clusterId, Message: err.Error()}
	}
	return address, StrategyDerived, nil
}

// DeriveFromPrimary takes "host:port", optionally prefixed with http:// or https://, and
// returns "host:port+2". An address without a port cannot be derived from.
func DeriveFromPrimary(primary string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(primary, "http://"), "https://")
	if trimmed == "" {
		return "", fmt.Errorf("primary address is empty")
	}
	if strings.Contains(trimmed, "/") {
		return "", fmt.Errorf("primary address %q has a path component", primary)
	}
	if !strings.Contains(trimmed, ":") {
		return "", fmt.Errorf("primary address %q has no port", primary)
	}
	host, portText, err := net.SplitHostPort(trimmed)
	if err != nil {
		return "", fmt.Errorf("cannot parse primary address %q: %s", primary, err)
	}
	if host == "" {
		return "", fmt.Errorf("primary address %q has no host", primary)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 0 {
		return "", fmt.Errorf("primary address %q has invalid port %q", primary, portText)
	}
	derived := port + DerivedPortOffset
	if derived > 65535 {
		return "", fmt.Errorf("derived port %d is out of range", derived)
	}
	return net.JoinHostPort(host, strconv.Itoa(derived)), nil
}
