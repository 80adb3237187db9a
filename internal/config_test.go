package internal

import (
	"testing"

	"lobby-lab/domain"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config
	err := env.Unmarshal(env.EnvSet{}, &config)
	req.NoError(err)

	req.Equal("0.0.0.0:5000", config.Address())
	req.False(config.JournalEnabled())

	opts, err := config.StoreOptions()
	req.NoError(err)
	req.Equal(domain.DefaultStoreOptions(), opts)
}

func TestConfig_StoreOptions_Rejects_Bad_Values(t *testing.T) {
	req := require.New(t)

	_, err := Config{MaxCapacity: 0, CapacityPolicy: "spectate"}.StoreOptions()
	req.Error(err)

	_, err = Config{MaxCapacity: 4, CapacityPolicy: "kick"}.StoreOptions()
	req.Error(err)

	opts, err := Config{MaxCapacity: 4, CapacityPolicy: "reject"}.StoreOptions()
	req.NoError(err)
	req.Equal(domain.CapacityReject, opts.CapacityPolicy)
}
