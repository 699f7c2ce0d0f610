package handler

import (
	"time"

	"warden/internal/domain/entity"
	"warden/internal/usecase"
)

// AccountResponse is the public view of an account; the password hash is never serialised.
type AccountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoginResponse carries an issued bearer token.
type LoginResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"tokenType"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Account   *AccountResponse `json:"account"`
}

func newAccountResponse(a *entity.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID.String(),
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role.String(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func newAccountResponses(accounts []*entity.Account) []*AccountResponse {
	out := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newAccountResponse(a))
	}

	return out
}

func newItemResponse(i *entity.Item) *ItemResponse {
	return &ItemResponse{
		ID:          i.ID.String(),
		OwnerID:     i.OwnerID.String(),
		Title:       i.Title,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func newItemResponses(items []*entity.Item) []*ItemResponse {
	out := make([]*ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, newItemResponse(i))
	}

	return out
}

func newLoginResponse(out *usecase.LoginOutput) *LoginResponse {
	return &LoginResponse{
		Token:     out.Token,
		TokenType: out.TokenType,
		ExpiresAt: out.ExpiresAt,
		Account:   newAccountResponse(out.Account),
	}
}
