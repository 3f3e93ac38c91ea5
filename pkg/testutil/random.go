// Package testutil provides utilities for testing
package testutil

import (
	"fmt"
	"math/rand"
	"strings"
)

// RandomString generates a random string of given length
func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// RandomTemplateName generates a unique, valid template name for testing
func RandomTemplateName() string {
	kinds := []string{"react", "go-service", "python-cli", "rust-lib", "docs"}
	return fmt.Sprintf("%s-%s", kinds[rand.Intn(len(kinds))], strings.ToLower(RandomString(6)))
}

// RandomExitCode returns a random non-zero exit code
func RandomExitCode() int {
	return 1 + rand.Intn(255)
}

// RandomHeredocLines generates lines that look like directives and
// variable references but must be written verbatim
func RandomHeredocLines(n int) []string {
	shapes := []string{"mkdir: %s", "var: %s = $x", "$%s", "  {", "}", "- echo %s", "if: %s == %s"}
	lines := make([]string, n)
	for i := range lines {
		shape := shapes[rand.Intn(len(shapes))]
		args := make([]any, strings.Count(shape, "%s"))
		for j := range args {
			args[j] = RandomString(4)
		}
		lines[i] = fmt.Sprintf(shape, args...)
	}
	return lines
}
