package database

import (
	client "academy/internal/database/client"
	"academy/internal/database/mongodb/index"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	index.NewProvisioner,
	client.ProvideMongoClient,
	client.NewFluentdClient,
	client.NewEventForwarder,
)
