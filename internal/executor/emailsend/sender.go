/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package emailsend

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/asgardeo/stepflow/internal/system/config"
	"github.com/asgardeo/stepflow/internal/system/log"
)

// EmailData is one outgoing message.
type EmailData struct {
	MessageID string
	To        []string
	Subject   string
	Body      string
}

// Sender delivers email messages.
type Sender interface {
	GetName() string
	Send(email EmailData) error
}

// NewSender returns an SMTP sender when a host is configured and a logging sender otherwise.
func NewSender(emailConfig config.EmailConfig) Sender {
	if emailConfig.Host == "" {
		return NewLogSender()
	}
	return NewSMTPSender(emailConfig)
}

// SMTPSender sends messages through an SMTP relay.
type SMTPSender struct {
	config   config.EmailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new instance of SMTPSender.
func NewSMTPSender(emailConfig config.EmailConfig) *SMTPSender {
	if emailConfig.Port == 0 {
		emailConfig.Port = 587
	}
	return &SMTPSender{config: emailConfig, sendMail: smtp.SendMail}
}

// GetName returns the name of the sender.
func (s *SMTPSender) GetName() string {
	return "smtp"
}

// Send delivers the message to every recipient.
func (s *SMTPSender) Send(email EmailData) error {
	if s.config.From == "" {
		return errors.New("sender address is not configured")
	}
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	if err := s.sendMail(addr, auth, s.config.From, email.To, buildMessage(s.config.From, email)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from string, email EmailData) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(email.To, ", ") + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(email.Subject) + "\r\n")
	b.WriteString("Message-ID: <" + email.MessageID + "@stepflow>\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.Body)
	return []byte(b.String())
}

func sanitizeHeader(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}

// LogSender logs messages instead of delivering them.
type LogSender struct {
	logger *log.Logger
}

// NewLogSender creates a new instance of LogSender.
func NewLogSender() *LogSender {
	return &LogSender{
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "LogEmailSender")),
	}
}

// GetName returns the name of the sender.
func (s *LogSender) GetName() string {
	return "log"
}

// Send logs the message.
func (s *LogSender) Send(email EmailData) error {
	s.logger.Info("Email not delivered, no SMTP host configured",
		log.String("messageId", email.MessageID),
		log.Any("to", email.To),
		log.String("subject", email.Subject))
	return nil
}
