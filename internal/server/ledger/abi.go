package ledger

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed electron.abi.json
var embeddedABI []byte

// Contract function names. Writes mutate state and are confirmed; reads are
// plain calls.
const (
	MethodAddUser            = "addUser"
	MethodGetUsers           = "getUsers"
	MethodAddProduct         = "addProduct"
	MethodGetProducts        = "getProducts"
	MethodGetProductByID     = "getProductById"
	MethodUpdateProductPrice = "updateProductPrice"
	MethodUpdateProductStock = "updateProductStock"
	MethodDeleteProduct      = "deleteProduct"
	MethodAddToCart          = "addToCart"
	MethodGetUserCart        = "getUserCart"
	MethodGetCart            = "getCart"
	MethodClearUserCart      = "clearUserCart"
	MethodAddOrder           = "addOrder"
	MethodGetUserOrders      = "getUserOrders"
	MethodGetOrders          = "getOrders"
	MethodUpdateOrderStatus  = "updateOrderStatus"
)

// Menu lists every function the client relies on, mapped to whether it is
// a write.
var Menu = map[string]bool{
	MethodAddUser:            true,
	MethodGetUsers:           false,
	MethodAddProduct:         true,
	MethodGetProducts:        false,
	MethodGetProductByID:     false,
	MethodUpdateProductPrice: true,
	MethodUpdateProductStock: true,
	MethodDeleteProduct:      true,
	MethodAddToCart:          true,
	MethodGetUserCart:        false,
	MethodGetCart:            false,
	MethodClearUserCart:      true,
	MethodAddOrder:           true,
	MethodGetUserOrders:      false,
	MethodGetOrders:          false,
	MethodUpdateOrderStatus:  true,
}

// ObjectFetcher reads an ABI document from object storage.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// LoadABI reads the contract ABI from source.
//
// An empty source selects the embedded ABI, "s3://bucket/key" is read
// through fetcher and anything else is treated as a file path. Both a bare
// ABI array and a compiler artifact with an "abi" member are accepted.
func LoadABI(ctx context.Context, source string, fetcher ObjectFetcher) (abi.ABI, error) {
	var raw []byte
	switch {
	case source == "":
		raw = embeddedABI
	case strings.HasPrefix(source, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(source, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return abi.ABI{}, fmt.Errorf("invalid ABI location %q", source)
		}
		if fetcher == nil {
			return abi.ABI{}, errors.New("no object storage configured for ABI source")
		}
		b, err := fetcher.Fetch(ctx, bucket, key)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("fetch ABI: %w", err)
		}
		raw = b
	default:
		b, err := os.ReadFile(source)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("read ABI: %w", err)
		}
		raw = b
	}
	return ParseABI(bytes.NewReader(raw))
}

// ParseABI parses an ABI document and checks that it exposes the full menu.
func ParseABI(r io.Reader) (abi.ABI, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return abi.ABI{}, err
	}

	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(b, &artifact); err != nil {
			return abi.ABI{}, fmt.Errorf("parse ABI artifact: %w", err)
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, errors.New("ABI artifact has no abi member")
		}
		b = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(b))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse ABI: %w", err)
	}
	if err := checkMenu(parsed); err != nil {
		return abi.ABI{}, err
	}
	return parsed, nil
}

func checkMenu(parsed abi.ABI) error {
	var errs []error
	for name, write := range Menu {
		m, ok := parsed.Methods[name]
		if !ok {
			errs = append(errs, fmt.Errorf("ABI lacks function %s", name))
			continue
		}
		if !write && !m.IsConstant() {
			errs = append(errs, fmt.Errorf("function %s must be view", name))
		}
	}
	return errors.Join(errs...)
}
