package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/service"
)

// addressJSON is the wire form of domain.Address, in requests and responses.
type addressJSON struct {
	Country      string `json:"country" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required,max=15"`
	City         string `json:"city" validate:"required"`
	StreetName   string `json:"street_name" validate:"required"`
	StreetNumber string `json:"street_number" validate:"required"`
}

func (a addressJSON) toDomain() domain.Address {
	return domain.Address{
		Country:      a.Country,
		PostalCode:   a.PostalCode,
		City:         a.City,
		StreetName:   a.StreetName,
		StreetNumber: a.StreetNumber,
	}
}

func addressToResponse(a domain.Address) addressJSON {
	return addressJSON{
		Country:      a.Country,
		PostalCode:   a.PostalCode,
		City:         a.City,
		StreetName:   a.StreetName,
		StreetNumber: a.StreetNumber,
	}
}

type tripRequest struct {
	Name      string      `json:"name" validate:"required"`
	StartDate *types.Date `json:"start_date" validate:"required"`
	EndDate   *types.Date `json:"end_date" validate:"required"`
	Address   addressJSON `json:"address"`
}

func (t tripRequest) input() service.TripInput {
	return service.TripInput{
		Name:      t.Name,
		StartDate: t.StartDate.Time,
		EndDate:   t.EndDate.Time,
		Address:   t.Address.toDomain(),
	}
}

type tripResponse struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	StartDate  types.Date         `json:"start_date"`
	EndDate    types.Date         `json:"end_date"`
	Address    addressJSON        `json:"address"`
	Owner      domain.User        `json:"owner"`
	Members    []domain.User      `json:"members"`
	Activities []activityResponse `json:"activities"`

	Transactions []transactionResponse `json:"transactions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// transactionResponse is read-only; expenses have no write route.
type transactionResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	AmountCents int64       `json:"amount_cents"`
	InvoiceURL  string      `json:"invoice_url,omitempty"`
	Owner       domain.User `json:"owner"`
	CreatedAt   time.Time   `json:"created_at"`
}

func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:         t.ID,
		Name:       t.Name,
		StartDate:  types.Date{Time: t.StartDate},
		EndDate:    types.Date{Time: t.EndDate},
		Address:    addressToResponse(t.Address),
		Owner:      t.Owner,
		Members:    make([]domain.User, 0, len(t.Members)),
		Activities: make([]activityResponse, 0, len(t.Activities)),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,

		Transactions: make([]transactionResponse, 0, len(t.Transactions)),
	}
	resp.Members = append(resp.Members, t.Members...)
	for _, a := range t.Activities {
		resp.Activities = append(resp.Activities, activityToResponse(a))
	}
	for _, x := range t.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:          x.ID,
			Name:        x.Name,
			Description: x.Description,
			AmountCents: x.AmountCents,
			InvoiceURL:  x.InvoiceURL,
			Owner:       x.Owner,
			CreatedAt:   x.CreatedAt,
		})
	}
	return resp
}

func tripsToResponse(trips []domain.Trip) []tripResponse {
	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	return out
}

type activityRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required,max=150"`
	StartDate   *types.Date `json:"start_date" validate:"required"`
	EndDate     *types.Date `json:"end_date" validate:"required"`
	Address     addressJSON `json:"address"`
}

func (a activityRequest) input() service.ActivityInput {
	return service.ActivityInput{
		Name:        a.Name,
		Description: a.Description,
		StartDate:   a.StartDate.Time,
		EndDate:     a.EndDate.Time,
		Address:     a.Address.toDomain(),
	}
}

type activityResponse struct {
	ID          uuid.UUID   `json:"id"`
	TripID      uuid.UUID   `json:"trip_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	StartDate   types.Date  `json:"start_date"`
	EndDate     types.Date  `json:"end_date"`
	Address     addressJSON `json:"address"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func activityToResponse(a domain.Activity) activityResponse {
	return activityResponse{
		ID:          a.ID,
		TripID:      a.TripID,
		Name:        a.Name,
		Description: a.Description,
		StartDate:   types.Date{Time: a.StartDate},
		EndDate:     types.Date{Time: a.EndDate},
		Address:     addressToResponse(a.Address),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type inviteRequest struct {
	TripID uuid.UUID `json:"trip_id" validate:"required"`
	Email  string    `json:"email" validate:"required"`
}

type inviteResponseRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type inviteResponse struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	TripName  string    `json:"trip_name"`
	UserID    uuid.UUID `json:"user_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func inviteToResponse(i domain.Invite) inviteResponse {
	return inviteResponse{
		ID:        i.ID,
		TripID:    i.TripID,
		TripName:  i.TripName,
		UserID:    i.UserID,
		IsRead:    i.IsRead,
		CreatedAt: i.CreatedAt,
	}
}

type messageRequest struct {
	Content string `json:"content" validate:"required"`
}

type signInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type signInResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type contactRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

type countryCountResponse struct {
	Country string `json:"country"`
	Users   int    `json:"users"`
}
