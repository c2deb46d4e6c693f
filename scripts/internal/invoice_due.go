package internal

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/sourcegraph/conc/pool"
)

type invoiceDueSummary struct {
	Due      int
	Invoiced int
	Errors   []string
}

// InvoiceDueSubscriptions issues one invoice for every active subscription of
// TENANT_ID whose next invoice date is on or before today. With DRY_RUN=true
// the due subscriptions are only listed.
func InvoiceDueSubscriptions() error {
	dryRun := os.Getenv("DRY_RUN") == "true"

	workerCount := 5
	if raw := os.Getenv("WORKER_COUNT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workerCount = n
		}
	}

	ctx, err := tenantContext()
	if err != nil {
		return err
	}

	env, err := newScriptEnv()
	if err != nil {
		return err
	}
	defer env.close()

	filter := types.NewNoLimitSubscriptionFilter()
	filter.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	subs, err := env.params.SubRepo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	today := types.BusinessDate(time.Now(), types.LoadBusinessLocation(env.cfg.Deployment.Timezone))
	due := dueSubscriptions(subs, today)

	env.log.Infow("found due subscriptions",
		"tenant_id", types.GetTenantID(ctx),
		"active", len(subs),
		"due", len(due),
		"dry_run", dryRun,
		"worker_count", workerCount)

	summary := invoiceDueSummary{Due: len(due)}
	if dryRun {
		for _, sub := range due {
			fmt.Printf("would invoice %s (%s, next %s)\n", sub.ID, sub.PlanName, sub.NextInvoiceDate.Format(time.DateOnly))
		}
		return nil
	}

	invoices := service.NewInvoiceService(env.params)
	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(workerCount)
	for _, sub := range due {
		sub := sub
		p.Go(func() {
			inv, err := invoices.CreateFromSubscription(ctx, sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				env.log.Errorw("failed to invoice subscription", "subscription_id", sub.ID, "error", err)
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", sub.ID, err))
				return
			}
			env.log.Infow("invoiced subscription", "subscription_id", sub.ID, "invoice_number", inv.Number)
			summary.Invoiced++
		})
	}
	p.Wait()

	fmt.Println("\n=== Invoice Run Summary ===")
	fmt.Printf("Due: %d\nInvoiced: %d\nErrors: %d\n", summary.Due, summary.Invoiced, len(summary.Errors))
	for _, e := range summary.Errors {
		fmt.Printf("  %s\n", e)
	}
	return nil
}

// dueSubscriptions keeps active subscriptions with a next invoice date on or
// before today.
func dueSubscriptions(subs []*subscription.Subscription, today time.Time) []*subscription.Subscription {
	var due []*subscription.Subscription
	for _, sub := range subs {
		if !sub.IsActive() || sub.NextInvoiceDate == nil {
			continue
		}
		if !sub.NextInvoiceDate.After(today) {
			due = append(due, sub)
		}
	}
	return due
}
