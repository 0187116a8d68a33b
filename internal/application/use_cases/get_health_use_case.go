package use_cases

import (
	"context"
	"strconv"
	"time"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

const healthProbeTimeout = 2 * time.Second

type HealthDependencies struct {
	Network string
	Ledger  portsout.LedgerGateway
	Signer  portsout.WalletSigner
}

type getHealthUseCase struct {
	deps HealthDependencies
}

// NewGetHealthUseCase reports liveness plus the state of the ledger RPC and
// the signing wallet. Missing dependencies are not probed.
func NewGetHealthUseCase(deps HealthDependencies) portsin.GetHealthUseCase {
	return &getHealthUseCase{deps: deps}
}

func (u *getHealthUseCase) Execute(ctx context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	checks := map[string]dto.HealthCheck{}
	passed := []bool{}

	if u.deps.Ledger != nil {
		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		height, appErr := u.deps.Ledger.GetBlockHeight(probeCtx, valueobjects.CommitmentConfirmed)
		cancel()

		check := dto.HealthCheck{OK: appErr == nil}
		if appErr != nil {
			check.Detail = appErr.Code
		} else {
			check.Detail = "block_height=" + strconv.FormatUint(height, 10)
		}
		checks["ledger"] = check
		passed = append(passed, check.OK)
	}

	if u.deps.Signer != nil {
		status := u.deps.Signer.Status(ctx)
		check := dto.HealthCheck{OK: status.Ready && len(status.EligibleKeys) > 0, Detail: status.Reason}
		checks["wallet"] = check
		passed = append(passed, check.OK)
	}

	output := dto.HealthOutput{
		Status:  valueobjects.HealthStatusFromChecks(passed...).String(),
		Network: u.deps.Network,
	}
	if len(checks) > 0 {
		output.Checks = checks
	}
	return output, nil
}
