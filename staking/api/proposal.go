package api

import (
	"context"
	"fmt"
	"io"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
)

// ProposalContentInvalidText is the textual representation of an invalid
// ProposalContent.
const ProposalContentInvalidText = "(invalid)"

var (
	_ prettyprint.PrettyPrinter = (*ProposalContent)(nil)
	_ prettyprint.PrettyPrinter = (*Proposal)(nil)
)

// ProposalID is a proposal identifier, assigned from a counter starting
// at one.
type ProposalID uint64

// ProposalStatus is the status of a proposal.
type ProposalStatus uint8

const (
	// StatusInvalid is an invalid proposal status.
	StatusInvalid ProposalStatus = 0
	// StatusActive is the status of a proposal awaiting a decision.
	StatusActive ProposalStatus = 1
	// StatusAccepted is the status of an accepted proposal.
	StatusAccepted ProposalStatus = 2
	// StatusRejected is the status of a rejected proposal.
	StatusRejected ProposalStatus = 3

	statusActiveText   = "active"
	statusAcceptedText = "accepted"
	statusRejectedText = "rejected"
)

// String returns a string representation of a proposal status.
func (p ProposalStatus) String() string {
	switch p {
	case StatusActive:
		return statusActiveText
	case StatusAccepted:
		return statusAcceptedText
	case StatusRejected:
		return statusRejectedText
	default:
		return fmt.Sprintf("[unknown proposal status: %d]", uint8(p))
	}
}

// MarshalText encodes a ProposalStatus into text form.
func (p ProposalStatus) MarshalText() ([]byte, error) {
	switch p {
	case StatusActive, StatusAccepted, StatusRejected:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid proposal status: %d", uint8(p))
	}
}

// UnmarshalText decodes a text slice into a ProposalStatus.
func (p *ProposalStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case statusActiveText:
		*p = StatusActive
	case statusAcceptedText:
		*p = StatusAccepted
	case statusRejectedText:
		*p = StatusRejected
	default:
		return fmt.Errorf("%w: invalid proposal status: %s", ErrInvalidArgument, string(text))
	}
	return nil
}

// AddCollectionProposal enrolls a new collection.
type AddCollectionProposal struct {
	CollectionAddress Address    `json:"collection_address"`
	Collection        Collection `json:"collection"`
}

// ValidateBasic performs basic add collection proposal validity checks.
func (p *AddCollectionProposal) ValidateBasic() error {
	if !p.CollectionAddress.IsValid() {
		return fmt.Errorf("%w: malformed collection address", ErrInvalidArgument)
	}
	return p.Collection.ValidateBasic()
}

// UpdateCollectionProposal replaces the terms of an existing collection,
// optionally moving it to a new address.
type UpdateCollectionProposal struct {
	CollectionAddress    Address    `json:"collection_address"`
	NewCollectionAddress *Address   `json:"new_collection_address,omitempty"`
	NewCollection        Collection `json:"new_collection"`
}

// ValidateBasic performs basic update collection proposal validity checks.
func (p *UpdateCollectionProposal) ValidateBasic() error {
	if !p.CollectionAddress.IsValid() {
		return fmt.Errorf("%w: malformed collection address", ErrInvalidArgument)
	}
	if p.NewCollectionAddress != nil && !p.NewCollectionAddress.IsValid() {
		return fmt.Errorf("%w: malformed new collection address", ErrInvalidArgument)
	}
	return p.NewCollection.ValidateBasic()
}

// ResultAddress returns the address the collection lives at once the
// proposal is accepted.
func (p *UpdateCollectionProposal) ResultAddress() Address {
	if p.NewCollectionAddress != nil {
		return *p.NewCollectionAddress
	}
	return p.CollectionAddress
}

// ProposalContent is the content of a proposal. Exactly one of the fields
// is set.
type ProposalContent struct {
	AddCollection    *AddCollectionProposal    `json:"add_collection,omitempty"`
	UpdateCollection *UpdateCollectionProposal `json:"update_collection,omitempty"`
}

// ValidateBasic performs basic proposal content validity checks.
func (p *ProposalContent) ValidateBasic() error {
	switch {
	case p.AddCollection != nil && p.UpdateCollection != nil:
		return fmt.Errorf("%w: proposal content has multiple fields set", ErrInvalidArgument)
	case p.AddCollection != nil:
		return p.AddCollection.ValidateBasic()
	case p.UpdateCollection != nil:
		return p.UpdateCollection.ValidateBasic()
	default:
		return fmt.Errorf("%w: proposal content has no fields set", ErrInvalidArgument)
	}
}

// Collection returns the collection terms the proposal installs.
func (p *ProposalContent) Collection() *Collection {
	switch {
	case p.AddCollection != nil:
		return &p.AddCollection.Collection
	case p.UpdateCollection != nil:
		return &p.UpdateCollection.NewCollection
	default:
		return nil
	}
}

// PrettyPrint writes a pretty-printed representation of ProposalContent to
// the given writer.
func (p ProposalContent) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	switch {
	case p.AddCollection != nil && p.UpdateCollection == nil:
		fmt.Fprintf(w, "%sAdd Collection: %s\n", prefix, p.AddCollection.CollectionAddress)
		p.AddCollection.Collection.PrettyPrint(ctx, prefix+"  ", w)
	case p.UpdateCollection != nil && p.AddCollection == nil:
		fmt.Fprintf(w, "%sUpdate Collection: %s -> %s\n", prefix,
			p.UpdateCollection.CollectionAddress,
			p.UpdateCollection.ResultAddress(),
		)
		p.UpdateCollection.NewCollection.PrettyPrint(ctx, prefix+"  ", w)
	default:
		fmt.Fprintf(w, "%s%s\n", prefix, ProposalContentInvalidText)
	}
}

// Proposal is a collection terms change request.
type Proposal struct {
	ID      ProposalID      `json:"id"`
	Status  ProposalStatus  `json:"status"`
	Content ProposalContent `json:"content"`
	Price   Funds           `json:"price"`
}

// PrettyPrint writes a pretty-printed representation of the proposal to
// the given writer.
func (p Proposal) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sID:     %d\n", prefix, p.ID)
	fmt.Fprintf(w, "%sStatus: %s\n", prefix, p.Status)
	fmt.Fprintf(w, "%sPrice:  %s\n", prefix, p.Price)
	p.Content.PrettyPrint(ctx, prefix, w)
}
