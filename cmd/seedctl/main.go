package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"seedswap/cmd/internal/secret"
	"seedswap/crypto"
	"seedswap/rpc"
)

const (
	rpcURLEnv        = "SEEDCTL_RPC_URL"
	defaultRPCURL    = "http://127.0.0.1:8545"
	defaultSecretEnv = "SEEDSWAP_JWT_SECRET"
	tokenTTL         = 5 * time.Minute
)

type globalOptions struct {
	endpoint  string
	as        string
	issuer    string
	secretEnv string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seedctl", flag.ContinueOnError)
	opts := globalOptions{}
	fs.StringVar(&opts.endpoint, "rpc", envOr(rpcURLEnv, defaultRPCURL), "JSON-RPC endpoint")
	fs.StringVar(&opts.as, "as", "", "Address to act as; signs a short-lived bearer token")
	fs.StringVar(&opts.issuer, "issuer", "seedswap", "Token issuer claim")
	fs.StringVar(&opts.secretEnv, "secret-env", defaultSecretEnv, "Environment variable holding the RPC signing secret")
	fs.Usage = func() { printUsage(fs.Output()) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(out)
		return nil
	}

	token, err := opts.bearer()
	if err != nil {
		return err
	}
	c := newClient(opts.endpoint, token)
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "params":
		return query(c, out, "seedswap_params", nil)
	case "totals":
		return query(c, out, "seedswap_totals", nil)
	case "count":
		return query(c, out, "seedswap_numberSwaps", nil)
	case "state-root":
		return query(c, out, "seedswap_stateRoot", nil)
	case "record":
		if len(cmdArgs) != 1 {
			return errors.New("usage: record <id>")
		}
		id, err := strconv.ParseUint(cmdArgs[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		return query(c, out, "seedswap_record", map[string]uint64{"id": id})
	case "records":
		offset, limit, err := parsePage(cmdArgs)
		if err != nil {
			return err
		}
		return query(c, out, "seedswap_records", map[string]uint64{"offset": offset, "limit": limit})
	case "user":
		if len(cmdArgs) != 1 {
			return errors.New("usage: user <address>")
		}
		return query(c, out, "seedswap_userSwapData", map[string]string{"address": cmdArgs[0]})
	case "roles":
		if len(cmdArgs) != 1 {
			return errors.New("usage: roles <address>")
		}
		return query(c, out, "seedswap_roles", map[string]string{"address": cmdArgs[0]})
	case "balance":
		if len(cmdArgs) != 2 {
			return errors.New("usage: balance <asset> <address>")
		}
		return query(c, out, "bank_balance", map[string]string{"asset": cmdArgs[0], "address": cmdArgs[1]})
	case "estimate-all", "distribute-all":
		if len(cmdArgs) != 2 {
			return fmt.Errorf("usage: %s <percentage> <time-units>", cmd)
		}
		pct, err := strconv.ParseUint(cmdArgs[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid percentage: %w", err)
		}
		units, err := strconv.ParseUint(cmdArgs[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid time units: %w", err)
		}
		method := "seedswap_estimateDistributeAll"
		if cmd == "distribute-all" {
			method = "seedswap_distributeAll"
		}
		return query(c, out, method, map[string]uint64{"percentage": pct, "timeUnits": units})
	case "estimate-batch", "distribute-batch":
		if len(cmdArgs) < 2 {
			return fmt.Errorf("usage: %s <percentage> <id>...", cmd)
		}
		pct, err := strconv.ParseUint(cmdArgs[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid percentage: %w", err)
		}
		ids, err := parseIDs(cmdArgs[1:])
		if err != nil {
			return err
		}
		method := "seedswap_estimateDistributeBatch"
		if cmd == "distribute-batch" {
			method = "seedswap_distributeBatch"
		}
		return query(c, out, method, map[string]interface{}{"percentage": pct, "ids": ids})
	case "swap":
		if len(cmdArgs) != 1 {
			return errors.New("usage: swap <amount>")
		}
		return query(c, out, "seedswap_swap", map[string]string{"amount": cmdArgs[0]})
	case "withdraw":
		return query(c, out, "seedswap_emergencyUserWithdraw", nil)
	case "owner-withdraw":
		if len(cmdArgs) != 2 {
			return errors.New("usage: owner-withdraw <asset> <amount>")
		}
		return query(c, out, "seedswap_emergencyOwnerWithdraw", map[string]string{"asset": cmdArgs[0], "amount": cmdArgs[1]})
	case "pause":
		return query(c, out, "seedswap_pause", nil)
	case "unpause":
		return query(c, out, "seedswap_unpause", nil)
	case "whitelist", "unwhitelist":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: %s <address>...", cmd)
		}
		return query(c, out, "seedswap_updateWhitelistedUsers", map[string]interface{}{
			"addresses": cmdArgs,
			"granted":   cmd == "whitelist",
		})
	case "export":
		if len(cmdArgs) != 1 {
			return errors.New("usage: export <file.parquet>")
		}
		n, err := exportRecords(c, cmdArgs[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d records to %s\n", n, cmdArgs[0])
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// bearer signs a token for --as. Without --as the client stays anonymous.
func (o globalOptions) bearer() (string, error) {
	if strings.TrimSpace(o.as) == "" {
		return "", nil
	}
	caller, err := crypto.ParseAddress(o.as)
	if err != nil {
		return "", fmt.Errorf("invalid --as address: %w", err)
	}
	signingKey, err := secret.NewSource(o.secretEnv, "RPC signing secret").Get()
	if err != nil {
		return "", err
	}
	return rpc.IssueToken(signingKey, o.issuer, caller, tokenTTL)
}

func query(c *client, out io.Writer, method string, params interface{}) error {
	var result json.RawMessage
	if err := c.call(method, params, &result); err != nil {
		return err
	}
	return printJSON(out, result)
}

func printJSON(out io.Writer, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePage(args []string) (uint64, uint64, error) {
	var offset, limit uint64 = 0, 100
	var err error
	if len(args) > 0 {
		if offset, err = strconv.ParseUint(args[0], 10, 64); err != nil {
			return 0, 0, fmt.Errorf("invalid offset: %w", err)
		}
	}
	if len(args) > 1 {
		if limit, err = strconv.ParseUint(args[1], 10, 64); err != nil {
			return 0, 0, fmt.Errorf("invalid limit: %w", err)
		}
	}
	return offset, limit, nil
}

func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: seedctl [--rpc URL] [--as ADDRESS] <command> [args]

Queries:
  params | totals | count | state-root
  record <id>
  records [offset] [limit]
  user <address>
  roles <address>
  balance <asset> <address>
  estimate-all <percentage> <time-units>
  estimate-batch <percentage> <id>...

Calls (require --as and the signing secret):
  swap <amount>
  withdraw
  distribute-all <percentage> <time-units>
  distribute-batch <percentage> <id>...
  owner-withdraw <asset> <amount>
  pause | unpause
  whitelist <address>... | unwhitelist <address>...

Export:
  export <file.parquet>`)
}
