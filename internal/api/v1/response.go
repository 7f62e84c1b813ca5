package v1

type InitiatePaymentResponse struct {
	Success            bool   `json:"success"`
	OrderTrackingID    string `json:"orderTrackingId"`
	RedirectURL        string `json:"redirectUrl"`
	MerchantReference  string `json:"merchantReference"`
	PersistenceWarning string `json:"persistenceWarning,omitempty"`
}

type CheckoutResponse struct {
	RedirectURL       string `json:"redirectUrl"`
	MerchantReference string `json:"merchantReference"`
	OrderTrackingID   string `json:"orderTrackingId"`
}

type PaymentStatusResponse struct {
	Success                  bool   `json:"success"`
	PaymentStatusDescription string `json:"payment_status_description"`
	Status                   string `json:"status"`
	Details                  any    `json:"details"`
}

type CallbackResponse struct {
	Message                string `json:"message"`
	ApplicationID          string `json:"applicationId"`
	Status                 string `json:"status,omitempty"`
	OrderNotificationType  string `json:"orderNotificationType,omitempty"`
	OrderTrackingID        string `json:"orderTrackingId"`
	OrderMerchantReference string `json:"orderMerchantReference"`
}

type RegisterIPNResponse struct {
	IPNID            string `json:"ipn_id"`
	URL              string `json:"url"`
	NotificationType string `json:"notification_type"`
	Status           string `json:"ipn_status,omitempty"`
	CreatedDate      string `json:"created_date,omitempty"`
}
