package inventory_test

import (
	"time"

	"github.com/jhoicas/Almoxarifado-api/pkg/retry"
)

func retryPolicy(attempts int) retry.Policy {
	return retry.Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}
