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

// Package jwt provides utilities for issuing and verifying HS256 signed JSON Web Tokens.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned when a token is malformed.
	ErrInvalidToken = errors.New("invalid JWT format")
	// ErrInvalidSignature is returned when the signature does not match.
	ErrInvalidSignature = errors.New("invalid JWT signature")
	// ErrTokenExpired is returned when the token is past its expiry time.
	ErrTokenExpired = errors.New("JWT token has expired")
	// ErrInvalidIssuer is returned when the issuer claim does not match.
	ErrInvalidIssuer = errors.New("JWT issuer mismatch")
)

// ResolveIssuer returns the configured issuer or the default issuer when unset.
func ResolveIssuer(issuer string) string {
	if issuer == "" {
		return defaultIssuer
	}
	return issuer
}

// ResolveValidityPeriod returns the configured validity period or the default when unset.
func ResolveValidityPeriod(validityPeriod int64) int64 {
	if validityPeriod <= 0 {
		return defaultTokenValidity
	}
	return validityPeriod
}

// GenerateHS256 signs the given claims with the secret and returns the compact token.
// iat, exp and iss are set when absent.
func GenerateHS256(claims map[string]interface{}, secret, issuer string, validityPeriod int64,
	now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret is not configured")
	}

	payload := make(map[string]interface{}, len(claims)+3)
	for k, v := range claims {
		payload[k] = v
	}
	if _, ok := payload["iss"]; !ok {
		payload["iss"] = ResolveIssuer(issuer)
	}
	if _, ok := payload["iat"]; !ok {
		payload["iat"] = now.Unix()
	}
	if _, ok := payload["exp"]; !ok {
		payload["exp"] = now.Add(time.Duration(ResolveValidityPeriod(validityPeriod)) * time.Second).Unix()
	}

	headerBytes, err := json.Marshal(map[string]string{"alg": algorithmHS256, "typ": "JWT"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWT header: %w", err)
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWT payload: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerBytes) + "." +
		base64.RawURLEncoding.EncodeToString(payloadBytes)
	return signingInput + "." + sign(signingInput, secret), nil
}

// VerifyHS256 verifies the signature, expiry and issuer of the token and returns its claims.
// An empty issuer skips the issuer check.
func VerifyHS256(token, secret, issuer string, now time.Time) (map[string]interface{}, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	header, err := DecodeJWTHeader(token)
	if err != nil {
		return nil, err
	}
	if alg, _ := header["alg"].(string); alg != algorithmHS256 {
		return nil, fmt.Errorf("unsupported JWT algorithm: %v", header["alg"])
	}

	expected := sign(parts[0]+"."+parts[1], secret)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, ErrInvalidSignature
	}

	claims, err := DecodeJWTPayload(token)
	if err != nil {
		return nil, err
	}

	if exp, ok := claims["exp"].(float64); ok && now.Unix() >= int64(exp) {
		return nil, ErrTokenExpired
	}
	if issuer != "" {
		if iss, _ := claims["iss"].(string); iss != issuer {
			return nil, ErrInvalidIssuer
		}
	}

	return claims, nil
}

// DecodeJWTPayload decodes the payload of a JWT token and returns it as a map.
func DecodeJWTPayload(jwtToken string) (map[string]interface{}, error) {
	parts := strings.Split(jwtToken, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT payload: %w", err)
	}

	var claims map[string]interface{}
	if err = json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JWT claims: %w", err)
	}

	return claims, nil
}

// DecodeJWTHeader decodes the header of a JWT token and returns it as a map.
func DecodeJWTHeader(jwtToken string) (map[string]interface{}, error) {
	parts := strings.Split(jwtToken, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT header: %w", err)
	}

	var header map[string]interface{}
	if err = json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JWT header: %w", err)
	}

	return header, nil
}

func sign(signingInput, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
