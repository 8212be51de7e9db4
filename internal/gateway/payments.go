package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"booking-portal/models"

	"github.com/google/uuid"
)

type FPXPaymentRequest struct {
	EventID      string                `json:"event_id"`
	Attendees    int                   `json:"attendees"`
	AttendeeInfo []models.AttendeeInfo `json:"attendee_info"`
}

// CreateFPXPayment asks the platform to initiate an online-banking
// settlement. The reply body is a bank-hosted HTML document that must
// be served to the browser verbatim.
func (c *Client) CreateFPXPayment(ctx context.Context, token string, req *FPXPaymentRequest) (string, error) {
	body := map[string]any{
		"event_id":       req.EventID,
		"attendees":      req.Attendees,
		"attendee_info":  req.AttendeeInfo,
		"payment_method": string(models.PaymentFPX),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	html, err := c.doRaw(ctx, "payments.fpx", http.MethodPost, "/payments/fpx", token, body)
	if err != nil {
		return "", fmt.Errorf("CreateFPXPayment: %w", err)
	}
	return html, nil
}

// CheckPaymentStatus reads the outcome of the caller's in-flight
// settlement. pending until the bank reports a terminal state.
func (c *Client) CheckPaymentStatus(ctx context.Context, token string) (*models.PaymentState, error) {
	var state models.PaymentState
	if err := c.doJSON(ctx, "payments.status", http.MethodGet, "/payments/status", token, nil, &state); err != nil {
		return nil, fmt.Errorf("CheckPaymentStatus: %w", err)
	}
	return &state, nil
}

// UploadLocalOrder submits a purchase-order document in place of an
// online payment. The platform creates the booking and leaves it
// pending admin approval.
func (c *Client) UploadLocalOrder(ctx context.Context, token string, req *FPXPaymentRequest, filename string, document io.Reader) (*models.PaymentState, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: form file: %w", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: copy document: %w", err)
	}

	info, err := json.Marshal(req.AttendeeInfo)
	if err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: json.Marshal: %w", err)
	}
	_ = writer.WriteField("event_id", req.EventID)
	_ = writer.WriteField("attendees", fmt.Sprintf("%d", req.Attendees))
	_ = writer.WriteField("attendee_info", string(info))
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: close writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/local-order", &buf)
	if err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: http.NewReq: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	raw, err := c.roundTrip(ctx, "payments.local-order", httpReq)
	if err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: %w", err)
	}

	var state models.PaymentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("UploadLocalOrder: json.Unmarshal: %w", err)
	}
	return &state, nil
}
