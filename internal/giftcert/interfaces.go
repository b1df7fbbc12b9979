package giftcert

import "context"

// API defines the contract for the gift-certificate backend. The engine
// depends on this interface, never on the HTTP client directly.
type API interface {
	Create(ctx context.Context, req *CreateRequest) (*CreateResult, error)
	List(ctx context.Context, offset, limit int) ([]Certificate, error)
	Get(ctx context.Context, ref Ref) (*Certificate, error)
	Use(ctx context.Context, ref Ref, note string) error
	Annul(ctx context.Context, id int64, reason string) error
	Delete(ctx context.Context, id int64) error
	ResendEmail(ctx context.Context, id int64) error
	DownloadPDF(ctx context.Context, ref Ref) ([]byte, error)
}
