package token

import (
	rjtoken "github.com/RoyceAzure/rj/api/token"
)

// 一般 token 的 UserId 為 customer id, UPN 為帳號.
// admin 與 service token 用保留的 UPN 區分, 帳號不會長這樣.
const (
	AdminUPN   = "role:admin"
	ServiceUPN = "role:service"
)

var (
	ErrInvalidToken = rjtoken.ErrInvalidToken
	ErrExpiredToken = rjtoken.ErrExpiredToken
)

type Maker = rjtoken.Maker[int64]

type Payload = rjtoken.Payload[int64]

func NewPasetoMaker(symmetricKey string) (Maker, error) {
	return rjtoken.NewPasetoMaker[int64](symmetricKey)
}

func IsAdmin(p *Payload) bool {
	return p != nil && p.UPN == AdminUPN
}

func IsService(p *Payload) bool {
	return p != nil && p.UPN == ServiceUPN
}

// IsCustomer reports whether p was issued to customerID. Admin and service
// tokens never match a customer.
func IsCustomer(p *Payload, customerID int64) bool {
	return p != nil && !IsAdmin(p) && !IsService(p) && p.UserId == customerID
}
