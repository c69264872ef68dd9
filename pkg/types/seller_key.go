package types

import (
	"fmt"
	"strings"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/google/uuid"
)

// SellerKey identifies one seller account in one marketplace. Every cached
// aggregate is keyed by this triple.
type SellerKey struct {
	SellerID uuid.UUID `json:"sellerId"`
	Country  string    `json:"country"`
	Region   string    `json:"region"`
}

// NewSellerKey validates and builds a key from raw request inputs.
func NewSellerKey(sellerID, country, region string) (SellerKey, error) {
	id, err := uuid.Parse(strings.TrimSpace(sellerID))
	if err != nil {
		return SellerKey{}, errors.New(errors.CodeValidation, "sellerId must be a valid UUID")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return SellerKey{}, errors.New(errors.CodeValidation, "country is required")
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return SellerKey{}, errors.New(errors.CodeValidation, "region is required")
	}
	return SellerKey{SellerID: id, Country: country, Region: region}, nil
}

func (k SellerKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.SellerID, k.Country, k.Region)
}

// IsZero reports whether the key carries no seller identity.
func (k SellerKey) IsZero() bool {
	return k.SellerID == uuid.Nil
}
