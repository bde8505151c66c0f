package services

import (
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	to   []string
	msg  string
}

func newTestMailService(t *testing.T) (*MailService, chan sentMail) {
	t.Helper()
	s := NewMailService(MailConfig{
		Host:         "smtp.example.com",
		Port:         "587",
		Username:     "bot",
		Password:     "secret",
		From:         "bot@example.com",
		TemplatesDir: "../../web/templates",
	})
	require.True(t, s.Enabled)

	sent := make(chan sentMail, 1)
	s.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		sent <- sentMail{addr: addr, to: to, msg: string(msg)}
		return nil
	}
	return s, sent
}

func waitMail(t *testing.T, sent chan sentMail) sentMail {
	t.Helper()
	select {
	case m := <-sent:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no email sent")
	}
	return sentMail{}
}

func TestMailService_FriendRequest(t *testing.T) {
	s, sent := newTestMailService(t)
	s.SendFriendRequestEmail("bob@example.com", "alice", "http://localhost:8080/community/requests")

	m := waitMail(t, sent)
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Equal(t, []string{"bob@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: alice sent you a friend request")
	assert.Contains(t, m.msg, "http://localhost:8080/community/requests")
}

func TestMailService_LevelUp(t *testing.T) {
	s, sent := newTestMailService(t)
	s.SendLevelUpEmail("bob@example.com", 3, "Explorer")

	m := waitMail(t, sent)
	assert.Contains(t, m.msg, "Subject: You reached level 3!")
	assert.Contains(t, m.msg, "level 3</strong>: Explorer")
}

func TestMailService_DisabledWithoutSMTP(t *testing.T) {
	s := NewMailService(MailConfig{TemplatesDir: "../../web/templates"})
	assert.False(t, s.Enabled)

	called := false
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	s.SendLevelUpEmail("bob@example.com", 2, "Apprentice")
	assert.False(t, called)
}
