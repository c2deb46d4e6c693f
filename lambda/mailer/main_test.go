package main

import (
	"context"
	"testing"

	"github.com/devicedesk/devicedesk/internal/email"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerHandle(t *testing.T) {
	sender := testutil.NewMockEmailSender()
	m := &mailer{sender: sender, log: logger.NewNopLogger()}

	resp, err := m.handle(context.Background(), email.SendEmailRequest{
		ToAddress: "ops@x.test",
		Subject:   "Hello",
		HTML:      "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	require.Len(t, sender.Sent, 1)
}

func TestMailerHandle_ReportsFailureInBody(t *testing.T) {
	m := &mailer{sender: testutil.NewMockEmailSender(), log: logger.NewNopLogger()}

	resp, err := m.handle(context.Background(), email.SendEmailRequest{ToAddress: "not-an-email", Subject: "Hello", HTML: "x"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}
