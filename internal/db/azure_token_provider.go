package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// azureTokenProvider requests Entra ID tokens for the PostgreSQL scope from
// any azcore credential.
type azureTokenProvider struct {
	credential azcore.TokenCredential
	label      string
}

// NewAzureServicePrincipalProvider authenticates with a client secret.
func NewAzureServicePrincipalProvider(tenantID, clientID, clientSecret string) (TokenProvider, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("azure service principal requires tenant ID, client ID and client secret: %w", pgcsv.ErrInvalidConfig)
	}

	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return &azureTokenProvider{
		credential: cred,
		label:      fmt.Sprintf("Azure service principal (tenant=%s, client=%s)", tenantID, clientID),
	}, nil
}

// NewAzureDefaultCredentialProvider walks DefaultAzureCredential: environment,
// workload identity, managed identity, then developer CLIs.
func NewAzureDefaultCredentialProvider() (TokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &azureTokenProvider{credential: cred, label: "Azure default credential"}, nil
}

func (p *azureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *azureTokenProvider) String() string {
	return p.label
}
