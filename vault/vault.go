package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
)

// Vault keeps organiser payout bank details out of Postgres.
type Vault struct {
	PayoutPath string
	*api.Client
}

func New(token, unsealKey, address, payoutPath string) (*Vault, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("new: error initializing vault: %w", err)
	}

	client.SetToken(token)

	s := client.Sys()
	status, err := s.SealStatus()
	if err != nil {
		return nil, fmt.Errorf("new: error getting seal status: %w", err)
	}

	if status.Sealed {
		unsealResponse, err := s.Unseal(unsealKey)
		if err != nil {
			return nil, fmt.Errorf("new: error getting unseal response: %w", err)
		}
		if unsealResponse.Sealed {
			return nil, fmt.Errorf("new: vault unseal unsuccessful")
		}
	}

	err = createIfNotExists(client, payoutPath)
	if err != nil {
		return nil, fmt.Errorf("new: unable to mount payout path: %w", err)
	}

	return &Vault{PayoutPath: payoutPath, Client: client}, nil
}

func (v *Vault) WritePayoutDetails(ctx context.Context, organiserID string, details map[string]interface{}) error {
	_, err := v.Logical().WriteWithContext(ctx, v.payoutKey(organiserID), details)
	if err != nil {
		return fmt.Errorf("writePayoutDetails: unable to write details for %s: %w", organiserID, err)
	}
	return nil
}

// HasPayoutDetails reports whether bank details were ever stored for the organiser.
func (v *Vault) HasPayoutDetails(ctx context.Context, organiserID string) (bool, error) {
	secret, err := v.Logical().ReadWithContext(ctx, v.payoutKey(organiserID))
	if err != nil {
		return false, fmt.Errorf("hasPayoutDetails: unable to read details for %s: %w", organiserID, err)
	}
	return secret != nil && len(secret.Data) > 0, nil
}

func (v *Vault) payoutKey(organiserID string) string {
	return fmt.Sprintf("%s/%s", v.PayoutPath, organiserID)
}

func createIfNotExists(client *api.Client, path string) error {
	mounts, err := client.Sys().ListMounts()
	if err != nil {
		return fmt.Errorf("createIfNotExists: unable to list mounts: %w", err)
	}

	if _, ok := mounts[path+"/"]; !ok {
		err = client.Sys().Mount(path, &api.MountInput{Type: "kv"})
		if err != nil {
			return fmt.Errorf("createIfNotExists: unable to create path: %w", err)
		}
	}

	return nil
}
