// Package clientinfo derives a human-readable client descriptor and a stable
// fingerprint from a User-Agent string. Vote audit events carry both so
// operators can spot a voter's client changing mid-window without storing the
// raw header.
package clientinfo

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Describe renders a User-Agent as "Browser on OS" for audit display.
// Unparseable agents degrade to a generic descriptor rather than failing.
func Describe(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OSInfo().Name
	if platform := ua.Platform(); platform == "iPhone" || platform == "iPad" {
		os = platform
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}

// Service computes client fingerprints. Disabled or nil instances return
// empty fingerprints so callers need no branching.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ComputeFingerprint hashes the stable parts of a User-Agent: browser name,
// major version, and OS. Minor and patch version bumps keep the same
// fingerprint; a browser or OS change rolls it.
func (s *Service) ComputeFingerprint(rawUA string) string {
	if s == nil || !s.enabled || rawUA == "" {
		return ""
	}

	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	major := version
	if idx := strings.IndexByte(version, '.'); idx >= 0 {
		major = version[:idx]
	}

	h := sha256.Sum256([]byte(browser + "|" + major + "|" + ua.OSInfo().Name + "|" + ua.Platform()))
	return hex.EncodeToString(h[:])
}
