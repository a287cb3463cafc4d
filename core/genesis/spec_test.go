package genesis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seedswap/crypto"
	"seedswap/native/seedswap"
)

const validSpec = `
owner: "0x00000000000000000000000000000000000000a1"
deployer: "0x00000000000000000000000000000000000000a2"
tokens:
  - symbol: eth
    name: Ether
    decimals: 18
  - symbol: TEA
    name: TEA Token
    decimals: 18
    supply: "1000000"
alloc:
  "0x00000000000000000000000000000000000000b2":
    ETH: "50"
  "0x00000000000000000000000000000000000000b1":
    tea: "10"
    ETH: "20"
roles:
  whitelisted:
    - "0x00000000000000000000000000000000000000b2"
    - "0x00000000000000000000000000000000000000b1"
    - "0x00000000000000000000000000000000000000b1"
vaultFunding: "500000"
sale:
  hardCap: "1000"
  saleRate: "3"
  saleStart: 100
  saleEnd: 200
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(validSpec))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.OwnerAddress()[19] != 0xa1 || spec.DeployerAddress()[19] != 0xa2 {
		t.Fatalf("unexpected owner/deployer")
	}
	if spec.Tokens[1].TokenSupply().Int64() != 1_000_000 || spec.Tokens[0].TokenSupply().Sign() != 0 {
		t.Fatalf("unexpected supplies")
	}
	if spec.Funding != "500000" || spec.VaultFunding().Int64() != 500_000 {
		t.Fatalf("unexpected vault funding %s", spec.VaultFunding())
	}

	params := spec.Params()
	if params.HardCap.Int64() != 1_000 || params.SaleRate.Int64() != 3 {
		t.Fatalf("sale overrides not applied: %+v", params)
	}
	if params.SaleStart != 100 || params.SaleEnd != 200 {
		t.Fatalf("unexpected window %d-%d", params.SaleStart, params.SaleEnd)
	}
	defaults := seedswap.DefaultParams()
	if params.MaxIndividualCap.Cmp(defaults.MaxIndividualCap) != 0 || params.SafeDistributeNumber != defaults.SafeDistributeNumber {
		t.Fatalf("unset fields should keep defaults")
	}

	allocs, err := spec.Allocations()
	if err != nil {
		t.Fatalf("allocations: %v", err)
	}
	if len(allocs) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(allocs))
	}
	if allocs[0].Address[19] != 0xb1 || allocs[0].Symbol != "ETH" || allocs[1].Symbol != "TEA" || allocs[2].Address[19] != 0xb2 {
		t.Fatalf("allocations not ordered: %+v", allocs)
	}

	users, err := spec.RoleMembers(RoleWhitelisted)
	if err != nil {
		t.Fatalf("role members: %v", err)
	}
	if len(users) != 2 || users[0][19] != 0xb1 {
		t.Fatalf("unexpected whitelist %x", users)
	}
}

func TestParseSpecRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":       validSpec + "extra: 1\n",
		"missing owner":       strings.Replace(validSpec, `owner: "0x00000000000000000000000000000000000000a1"`, "", 1),
		"duplicate token":     strings.Replace(validSpec, "symbol: TEA", "symbol: ETH", 1),
		"unknown alloc token": strings.Replace(validSpec, `ETH: "50"`, `DOGE: "50"`, 1),
		"negative amount":     strings.Replace(validSpec, `ETH: "50"`, `ETH: "-5"`, 1),
		"bad window":          strings.Replace(validSpec, "saleEnd: 200", "saleEnd: 50", 1),
		"unknown role":        strings.Replace(validSpec, "whitelisted:", "minter:", 1),
	}
	for name, raw := range cases {
		if _, err := ParseSpec([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadSpecAndDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	if err := os.WriteFile(path, []byte(validSpec), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSpec(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := LoadSpec(""); err == nil {
		t.Fatalf("expected error for empty path")
	}

	var owner [20]byte
	owner[0] = 7
	spec := DefaultSpec(owner, owner)
	if spec.OwnerAddress() != owner {
		t.Fatalf("owner not round tripped through bech32")
	}
	if !strings.HasPrefix(spec.Owner, string(crypto.SeedPrefix)) {
		t.Fatalf("expected %s prefix, got %s", crypto.SeedPrefix, spec.Owner)
	}
	if got := spec.Params(); got.SaleEnd != seedswap.DefaultSaleEnd {
		t.Fatalf("expected default params")
	}
}

func TestTokenNamesAreNormalised(t *testing.T) {
	raw := "owner: \"0x00000000000000000000000000000000000000a1\"\n" +
		"tokens:\n" +
		"  - symbol: ETH\n" +
		"    name: \"  Ether  \"\n" +
		"  - symbol: TEA\n" +
		"    name: \"Cafe\u0301\"\n" +
		"  - symbol: dai\n"
	spec, err := ParseSpec([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Tokens[0].Name != "Ether" {
		t.Fatalf("expected trimmed name, got %q", spec.Tokens[0].Name)
	}
	if spec.Tokens[1].Name != "Caf\u00e9" {
		t.Fatalf("expected NFC name, got %q", spec.Tokens[1].Name)
	}
	if spec.Tokens[2].Name != "DAI" {
		t.Fatalf("expected symbol fallback, got %q", spec.Tokens[2].Name)
	}
}
