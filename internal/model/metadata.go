package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

const MetadataVersion = 1

const (
	MetaVersion           = "version"
	MetaLegacyMessage     = "legacyMessage"
	MetaOrderTrackingID   = "orderTrackingId"
	MetaMerchantReference = "merchantReference"
	MetaPaymentStatus     = "paymentStatus"
	MetaGatewayStatus     = "gatewayStatus"
	MetaDescription       = "description"
	MetaRedirectURL       = "redirectUrl"
	MetaConfirmationCode  = "confirmationCode"
	MetaAmount            = "amount"
	MetaCurrency          = "currency"
	MetaPaymentMethod     = "paymentMethod"
	MetaNotificationType  = "notificationType"
	MetaOrderMetadata     = "orderMetadata"
	MetaGatewayPayload    = "gatewayPayload"
	MetaLastUpdated       = "lastUpdated"
)

// PaymentMetadata is the JSON object kept in applications.message.
type PaymentMetadata map[string]any

// DecodeMetadata parses a stored message column. Content that is not a JSON
// object is kept under legacyMessage instead of being discarded.
func DecodeMetadata(raw datatypes.JSON) PaymentMetadata {
	meta := PaymentMetadata{}
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return meta
	}

	if err := json.Unmarshal([]byte(text), &meta); err == nil && meta != nil {
		return meta
	}

	meta = PaymentMetadata{}
	var legacy any
	if err := json.Unmarshal([]byte(text), &legacy); err == nil {
		meta[MetaLegacyMessage] = legacy
		return meta
	}

	meta[MetaLegacyMessage] = text
	return meta
}

// Merge returns a copy of m with patch laid over it. Nil and empty string
// values in patch do not erase what is already stored.
func (m PaymentMetadata) Merge(patch map[string]any) PaymentMetadata {
	merged := make(PaymentMetadata, len(m)+len(patch)+1)
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		merged[k] = v
	}
	merged[MetaVersion] = MetadataVersion

	return merged
}

func (m PaymentMetadata) Encode() (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	return datatypes.JSON(data), nil
}

func (m PaymentMetadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
