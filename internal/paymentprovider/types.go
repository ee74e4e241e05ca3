package paymentprovider

// Transaction результат проверки транзакции в шлюзе.
type Transaction struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	Email     string
}

// Succeeded сообщает, что шлюз подтвердил успешную оплату.
func (t *Transaction) Succeeded() bool {
	return t != nil && t.Status == "success"
}

// verifyResponse ответ GET /transaction/verify/{reference}.
type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}
