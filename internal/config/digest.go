package config

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"

	"testlint/internal/diag"
)

// Digest — фиксированный 256-битный хеш (совместим с source.File.Hash).
type Digest [32]byte

// Combine строит составной хеш: H( content || part1 || part2 ... ).
// Порядок частей должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Digest hashes every field that can change analysis results. Runtime
// knobs that only affect scheduling or exit status stay out of the key.
func (c *Config) Digest() Digest {
	h := sha256.New()
	fmt.Fprintf(h, "dialect=%s\nmax_assertions=%d\n", c.Dialect, c.MaxAssertions)
	hashList(h, "assertions", c.Assertions)
	hashList(h, "extra_assertions", c.ExtraAssertions)
	hashList(h, "waits", c.Waits)
	hashList(h, "extra_waits", c.ExtraWaits)
	hashList(h, "io", c.IO)
	hashList(h, "extra_io", c.ExtraIO)
	hashList(h, "helpers", c.Helpers)
	hashList(h, "extra_helpers", c.ExtraHelpers)
	hashCodeSet(h, "enabled", c.Enabled)
	hashCodeSet(h, "disabled", c.Disabled)
	hashSeverities(h, c.Severity)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func hashList(w io.Writer, name string, list []string) {
	if list == nil {
		return
	}
	fmt.Fprintf(w, "%s=%q\n", name, list)
}

func hashCodeSet(w io.Writer, name string, set map[diag.Code]bool) {
	if len(set) == 0 {
		return
	}
	ids := make([]string, 0, len(set))
	for code := range set {
		ids = append(ids, code.ID())
	}
	sort.Strings(ids)
	fmt.Fprintf(w, "%s=%v\n", name, ids)
}

func hashSeverities(w io.Writer, m map[diag.Code]diag.Severity) {
	if len(m) == 0 {
		return
	}
	lines := make([]string, 0, len(m))
	for code, sev := range m {
		lines = append(lines, code.ID()+"="+sev.String())
	}
	sort.Strings(lines)
	fmt.Fprintf(w, "severity=%v\n", lines)
}
