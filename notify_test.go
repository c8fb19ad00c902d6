package dbbackup

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	n := NewSMTPNotifier(EmailCredentials{
		Address:  "ops@example.com",
		Username: "ops",
		Password: "secret",
	}, "smtp.example.com", 587)

	msg := n.buildMessage(errors.New("backup command failed: exit status 1"))

	assert.True(t, strings.HasPrefix(msg, "From: ops@example.com\r\n"))
	assert.Contains(t, msg, "To: ops@example.com\r\n")
	assert.Contains(t, msg, "Subject: Database backup error\r\n")
	assert.Contains(t, msg, "backup command failed: exit status 1")

	// Headers and body are separated by a blank line.
	assert.Contains(t, msg, "\r\n\r\n")
}
