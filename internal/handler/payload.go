package handler

import "github.com/GTDGit/vtu_api/internal/models"

// credentialsPayload carries write-only secrets. It is decoded from the request
// body, converted to models.Credentials and never written back.
type credentialsPayload struct {
	PIN        string `json:"pin"`
	CardNumber string `json:"cardNumber"`
	CardExpiry string `json:"cardExpiry"`
	CardCVV    string `json:"cvv"`
}

func (p credentialsPayload) credentials() models.Credentials {
	return models.Credentials{
		PIN:        p.PIN,
		CardNumber: p.CardNumber,
		CardExpiry: p.CardExpiry,
		CardCVV:    p.CardCVV,
	}
}

// orderPayload is an order request with its credentials inline.
type orderPayload struct {
	models.OrderRequest
	credentialsPayload
}

func (p *orderPayload) request() *models.OrderRequest {
	req := p.OrderRequest
	req.Credentials = p.credentials()
	return &req
}
