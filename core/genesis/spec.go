// core/genesis/spec.go
package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"seedswap/crypto"
	"seedswap/native/seedswap"
)

// Spec is the YAML document that seeds a fresh ledger: the token set, initial
// balances, role grants and the sale parameters.
type Spec struct {
	Owner    string                       `yaml:"owner"`
	Deployer string                       `yaml:"deployer"`
	Tokens   []TokenSpec                  `yaml:"tokens"`
	Alloc    map[string]map[string]string `yaml:"alloc"` // addr -> token -> amount
	Roles    map[string][]string          `yaml:"roles"` // role -> []addr
	Funding  string                       `yaml:"vaultFunding"`
	Sale     SaleSpec                     `yaml:"sale"`

	owner       [20]byte
	deployer    [20]byte
	vaultAmount *big.Int
	params      seedswap.Params
}

// TokenSpec registers one asset. Supply, when set, is minted to the owner.
type TokenSpec struct {
	Symbol   string `yaml:"symbol"`
	Name     string `yaml:"name"`
	Decimals uint8  `yaml:"decimals"`
	Supply   string `yaml:"supply,omitempty"`

	supply *big.Int
}

// SaleSpec overrides the default sale parameters. Empty fields keep the
// launch defaults.
type SaleSpec struct {
	BaseAsset            string `yaml:"baseAsset,omitempty"`
	SaleAsset            string `yaml:"saleAsset,omitempty"`
	HardCap              string `yaml:"hardCap,omitempty"`
	MinIndividualCap     string `yaml:"minIndividualCap,omitempty"`
	MaxIndividualCap     string `yaml:"maxIndividualCap,omitempty"`
	SaleRate             string `yaml:"saleRate,omitempty"`
	SaleStart            uint64 `yaml:"saleStart,omitempty"`
	SaleEnd              uint64 `yaml:"saleEnd,omitempty"`
	DistributePeriodUnit uint64 `yaml:"distributePeriodUnit,omitempty"`
	WithdrawalDeadline   uint64 `yaml:"withdrawalDeadline,omitempty"`
	SafeDistributeNumber uint64 `yaml:"safeDistributeNumber,omitempty"`
}

// Allocation is a resolved initial balance.
type Allocation struct {
	Address [20]byte
	Symbol  string
	Amount  *big.Int
}

const (
	RoleAdmin       = "admin"
	RoleWhitelisted = "whitelisted"
)

// LoadSpec reads and validates the genesis document at path.
func LoadSpec(path string) (*Spec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("genesis spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseSpec decodes and validates a genesis document. Unknown keys are
// rejected.
func ParseSpec(raw []byte) (*Spec, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &spec, nil
}

// DefaultSpec returns the launch configuration: ETH and TEA registered, the
// full TEA supply minted to owner and the default sale parameters.
func DefaultSpec(owner, deployer [20]byte) *Spec {
	supply := new(big.Int).Mul(big.NewInt(200_000_000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	spec := &Spec{
		Owner:    crypto.FormatAddress(owner),
		Deployer: crypto.FormatAddress(deployer),
		Tokens: []TokenSpec{
			{Symbol: seedswap.DefaultBaseAsset, Name: "Ether", Decimals: 18},
			{Symbol: seedswap.DefaultSaleAsset, Name: "TEA Token", Decimals: 18, Supply: supply.String()},
		},
	}
	if err := spec.validate(); err != nil {
		panic(fmt.Sprintf("genesis: default spec invalid: %v", err))
	}
	return spec
}

func (s *Spec) OwnerAddress() [20]byte    { return s.owner }
func (s *Spec) DeployerAddress() [20]byte { return s.deployer }

// Params returns a copy of the resolved sale parameters.
func (s *Spec) Params() seedswap.Params { return *s.params.Clone() }

// VaultFunding returns the amount of sale asset moved from the owner to the
// vault at genesis.
func (s *Spec) VaultFunding() *big.Int { return new(big.Int).Set(s.vaultAmount) }

// TokenSupply returns the amount minted to the owner at genesis.
func (t *TokenSpec) TokenSupply() *big.Int {
	if t.supply == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(t.supply)
}

// Allocations returns the initial balances ordered by address then symbol.
func (s *Spec) Allocations() ([]Allocation, error) {
	addresses := make([]string, 0, len(s.Alloc))
	for addr := range s.Alloc {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	out := make([]Allocation, 0)
	for _, addrStr := range addresses {
		addr, err := crypto.ParseAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("alloc[%q]: %w", addrStr, err)
		}
		balances := s.Alloc[addrStr]
		symbols := make([]string, 0, len(balances))
		for symbol := range balances {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			amount, err := parseAmount(balances[symbol])
			if err != nil {
				return nil, fmt.Errorf("alloc[%q][%q]: %w", addrStr, symbol, err)
			}
			out = append(out, Allocation{Address: addr, Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Amount: amount})
		}
	}
	return out, nil
}

// RoleMembers returns the sorted, de-duplicated addresses granted role.
func (s *Spec) RoleMembers(role string) ([][20]byte, error) {
	raw := append([]string(nil), s.Roles[role]...)
	sort.Strings(raw)
	seen := make(map[[20]byte]struct{}, len(raw))
	out := make([][20]byte, 0, len(raw))
	for _, addrStr := range raw {
		addr, err := crypto.ParseAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("roles[%q]: %w", role, err)
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out, nil
}

func (s *Spec) validate() error {
	owner, err := crypto.ParseAddress(s.Owner)
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if owner == ([20]byte{}) {
		return fmt.Errorf("owner must not be the zero address")
	}
	s.owner = owner
	s.deployer = owner
	if strings.TrimSpace(s.Deployer) != "" {
		if s.deployer, err = crypto.ParseAddress(s.Deployer); err != nil {
			return fmt.Errorf("deployer: %w", err)
		}
	}

	symbols := make(map[string]struct{}, len(s.Tokens))
	for i := range s.Tokens {
		tok := &s.Tokens[i]
		key := strings.ToUpper(strings.TrimSpace(tok.Symbol))
		if key == "" {
			return fmt.Errorf("tokens[%d]: symbol must be provided", i)
		}
		if _, exists := symbols[key]; exists {
			return fmt.Errorf("tokens[%d]: duplicate symbol %q", i, tok.Symbol)
		}
		symbols[key] = struct{}{}
		tok.Name = norm.NFC.String(strings.TrimSpace(tok.Name))
		if tok.Name == "" {
			tok.Name = key
		}
		if strings.TrimSpace(tok.Supply) != "" {
			if tok.supply, err = parseAmount(tok.Supply); err != nil {
				return fmt.Errorf("tokens[%d].supply: %w", i, err)
			}
		}
	}

	for addrStr, balances := range s.Alloc {
		if _, err := crypto.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("alloc[%q]: %w", addrStr, err)
		}
		for symbol, amount := range balances {
			if _, ok := symbols[strings.ToUpper(strings.TrimSpace(symbol))]; !ok {
				return fmt.Errorf("alloc[%q]: unknown token %q", addrStr, symbol)
			}
			if _, err := parseAmount(amount); err != nil {
				return fmt.Errorf("alloc[%q][%q]: %w", addrStr, symbol, err)
			}
		}
	}

	for role := range s.Roles {
		if role != RoleAdmin && role != RoleWhitelisted {
			return fmt.Errorf("roles: unsupported role %q", role)
		}
		if _, err := s.RoleMembers(role); err != nil {
			return err
		}
	}

	s.vaultAmount = big.NewInt(0)
	if strings.TrimSpace(s.Funding) != "" {
		if s.vaultAmount, err = parseAmount(s.Funding); err != nil {
			return fmt.Errorf("vaultFunding: %w", err)
		}
	}

	params, err := s.Sale.resolve()
	if err != nil {
		return fmt.Errorf("sale: %w", err)
	}
	if _, ok := symbols[params.BaseAsset]; !ok {
		return fmt.Errorf("sale: base asset %q is not a registered token", params.BaseAsset)
	}
	s.params = params
	return nil
}

func (s SaleSpec) resolve() (seedswap.Params, error) {
	params := seedswap.DefaultParams()
	if v := strings.TrimSpace(s.BaseAsset); v != "" {
		params.BaseAsset = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(s.SaleAsset); v != "" {
		params.SaleAsset = strings.ToUpper(v)
	}
	amounts := []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"hardCap", s.HardCap, &params.HardCap},
		{"minIndividualCap", s.MinIndividualCap, &params.MinIndividualCap},
		{"maxIndividualCap", s.MaxIndividualCap, &params.MaxIndividualCap},
		{"saleRate", s.SaleRate, &params.SaleRate},
	}
	for _, a := range amounts {
		if strings.TrimSpace(a.raw) == "" {
			continue
		}
		v, err := parseAmount(a.raw)
		if err != nil {
			return params, fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dst = v
	}
	if s.SaleStart != 0 {
		params.SaleStart = s.SaleStart
	}
	if s.SaleEnd != 0 {
		params.SaleEnd = s.SaleEnd
	}
	if s.DistributePeriodUnit != 0 {
		params.DistributePeriodUnit = s.DistributePeriodUnit
	}
	if s.WithdrawalDeadline != 0 {
		params.WithdrawalDeadline = s.WithdrawalDeadline
	}
	if s.SafeDistributeNumber != 0 {
		params.SafeDistributeNumber = s.SafeDistributeNumber
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must not be negative", raw)
	}
	return amount, nil
}
