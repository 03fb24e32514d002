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

// Package emailsend provides the handler of the email step and the senders it delivers through.
package emailsend

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"

	"github.com/asgardeo/stepflow/internal/executor/common"
	flowmodel "github.com/asgardeo/stepflow/internal/flow/model"
	"github.com/asgardeo/stepflow/internal/system/log"
)

const loggerComponentName = "EmailSendExecutor"

// EmailSendExecutor sends an email with the resolved recipient, subject and body.
type EmailSendExecutor struct {
	sender Sender
	logger *log.Logger
}

// NewEmailSendExecutor creates a new instance of EmailSendExecutor.
func NewEmailSendExecutor(sender Sender) *EmailSendExecutor {
	return &EmailSendExecutor{
		sender: sender,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Execute sends the message and returns {sent, messageId}.
func (e *EmailSendExecutor) Execute(ctx context.Context, fields map[string]any, _ flowmodel.ScopeReader) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	to := common.Strings(fields, "to")
	if len(to) == 0 {
		return nil, errors.New("recipient is required")
	}
	for _, addr := range to {
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, errors.New("invalid recipient: " + addr)
		}
	}

	email := EmailData{
		MessageID: uuid.NewString(),
		To:        to,
		Subject:   common.String(fields, "subject"),
		Body:      common.String(fields, "body"),
	}
	if err := e.sender.Send(email); err != nil {
		e.logger.Error("Failed to send email", log.String("sender", e.sender.GetName()), log.Error(err))
		return nil, err
	}
	e.logger.Debug("Email sent", log.String("sender", e.sender.GetName()),
		log.String("messageId", email.MessageID))

	return map[string]any{"sent": true, "messageId": email.MessageID}, nil
}
