package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var prefixPattern = regexp.MustCompile(`^[a-z0-9_]*$`)

// Namespace supplies table names. Production uses the empty prefix; tests
// get a random one so concurrent runs never share tables.
type Namespace struct {
	prefix string
}

// NewNamespace validates prefix and returns a namespace for it
func NewNamespace(prefix string) (Namespace, error) {
	if !prefixPattern.MatchString(prefix) {
		return Namespace{}, fmt.Errorf("invalid table prefix %q", prefix)
	}
	return Namespace{prefix: prefix}, nil
}

// TestNamespace returns a namespace with a random prefix
func TestNamespace() Namespace {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Namespace{prefix: "t" + id[:12] + "_"}
}

// Prefix returns the table prefix
func (n Namespace) Prefix() string {
	return n.prefix
}

// Table returns the namespaced table name
func (n Namespace) Table(name string) string {
	return n.prefix + name
}
