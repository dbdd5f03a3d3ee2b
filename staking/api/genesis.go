package api

// Genesis is the full staking platform state.
type Genesis struct {
	Config         Config              `json:"config"`
	Collections    []CollectionEntry   `json:"collections,omitempty"`
	Balances       []CollectionBalance `json:"balances,omitempty"`
	Proposals      []Proposal          `json:"proposals,omitempty"`
	LastProposalID ProposalID          `json:"last_proposal_id"`
	Funds          []Funds             `json:"funds,omitempty"`
	Stakers        []StakerInfo        `json:"stakers,omitempty"`
}

// NewGenesis creates an empty genesis state for the given config.
func NewGenesis(admin Address, owner, minter *Address) *Genesis {
	return &Genesis{
		Config: Config{
			Admin:  admin,
			Owner:  owner,
			Minter: minter,
		},
	}
}
