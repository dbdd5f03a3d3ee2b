package api

import (
	"context"
	"fmt"
	"io"

	"github.com/cryptogopniks/GopStake/common/prettyprint"
	"github.com/cryptogopniks/GopStake/common/quantity"
)

var _ prettyprint.PrettyPrinter = (*Instruction)(nil)

// TransferInstruction moves funds between accounts.
type TransferInstruction struct {
	From  Address `json:"from"`
	To    Address `json:"to"`
	Funds Funds   `json:"funds"`
}

// MintInstruction requests issuance of a native denomination from the
// minter.
type MintInstruction struct {
	Minter    Address           `json:"minter"`
	Recipient Address           `json:"recipient"`
	Denom     string            `json:"denom"`
	Amount    quantity.Quantity `json:"amount"`
}

// CustodyInstruction moves an item of a collection between holders.
type CustodyInstruction struct {
	Collection Address `json:"collection"`
	ItemID     ItemID  `json:"item_id"`
	From       Address `json:"from"`
	To         Address `json:"to"`
}

// Instruction is an outbound effect produced by a platform operation and
// executed by the host. Exactly one of the fields is set.
type Instruction struct {
	Transfer *TransferInstruction `json:"transfer,omitempty"`
	Mint     *MintInstruction     `json:"mint,omitempty"`
	Custody  *CustodyInstruction  `json:"custody,omitempty"`
}

// Kind returns a short name of the instruction variant.
func (in *Instruction) Kind() string {
	switch {
	case in.Transfer != nil:
		return "transfer"
	case in.Mint != nil:
		return "mint"
	case in.Custody != nil:
		return "custody"
	default:
		return "invalid"
	}
}

// PrettyPrint writes a pretty-printed representation of the instruction to
// the given writer.
func (in Instruction) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	switch {
	case in.Transfer != nil:
		fmt.Fprintf(w, "%sTransfer %s -> %s: %s\n", prefix, in.Transfer.From, in.Transfer.To, in.Transfer.Funds)
	case in.Mint != nil:
		fmt.Fprintf(w, "%sMint %s %s to %s via %s\n", prefix, in.Mint.Amount, in.Mint.Denom, in.Mint.Recipient, in.Mint.Minter)
	case in.Custody != nil:
		fmt.Fprintf(w, "%sCustody %s/%s: %s -> %s\n", prefix, in.Custody.Collection, in.Custody.ItemID, in.Custody.From, in.Custody.To)
	default:
		fmt.Fprintf(w, "%s(invalid)\n", prefix)
	}
}

// NewTransfer creates a transfer instruction.
func NewTransfer(from, to Address, funds Funds) Instruction {
	return Instruction{Transfer: &TransferInstruction{From: from, To: to, Funds: funds}}
}

// NewMint creates a mint instruction.
func NewMint(minter, recipient Address, denom string, amount *quantity.Quantity) Instruction {
	return Instruction{Mint: &MintInstruction{
		Minter:    minter,
		Recipient: recipient,
		Denom:     denom,
		Amount:    *amount.Clone(),
	}}
}

// NewCustody creates a custody transfer instruction.
func NewCustody(collection Address, item ItemID, from, to Address) Instruction {
	return Instruction{Custody: &CustodyInstruction{
		Collection: collection,
		ItemID:     item,
		From:       from,
		To:         to,
	}}
}
