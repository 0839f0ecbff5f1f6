package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

func TestBillingLifecycleMaintainsCustomerBalance(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupBillingTestEnv(t)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:   "Ramesh Textiles",
		Mobile: "9876543210",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if !customer.Balance.IsZero() || customer.TotalBills != 0 {
		t.Fatalf("new customer should start with zero aggregates: %+v", customer)
	}

	// 1) First bill: 2 x 100 @ 18% GST = 236.
	bill, err := models.CreateBill(ctx, &models.NewBill{
		CustomerId: customer.ID,
		Items: []*models.NewBillItem{
			{ProductName: "Cotton Fabric", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100), GstRate: decimal.NewFromInt(18), Unit: models.ProductUnitMtr},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if bill.BillNumber != "1" {
		t.Fatalf("first bill number = %q; want %q", bill.BillNumber, "1")
	}
	if !bill.Subtotal.Equal(decimal.NewFromInt(200)) || !bill.GstTotal.Equal(decimal.NewFromInt(36)) || !bill.Total.Equal(decimal.NewFromInt(236)) {
		t.Fatalf("bill sums = %s/%s/%s; want 200/36/236", bill.Subtotal, bill.GstTotal, bill.Total)
	}
	if !bill.PreviousBalance.IsZero() || !bill.ClosingBalance.Equal(decimal.NewFromInt(236)) {
		t.Fatalf("bill balances = %s/%s; want 0/236", bill.PreviousBalance, bill.ClosingBalance)
	}
	if bill.AmountInWords != "Two Hundred Thirty Six Rupees Only" {
		t.Fatalf("amount in words = %q", bill.AmountInWords)
	}
	if bill.CustomerMobile != "+919876543210" {
		t.Fatalf("bill customer mobile = %q; want %q", bill.CustomerMobile, "+919876543210")
	}

	customer, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer after bill: %v", err)
	}
	if customer.TotalBills != 1 || !customer.TotalAmount.Equal(decimal.NewFromInt(236)) || !customer.Balance.Equal(decimal.NewFromInt(236)) {
		t.Fatalf("customer aggregates after bill: %+v", customer)
	}

	// 2) Payment of 100 settles part of the balance.
	payment, err := models.CreatePayment(ctx, &models.NewPayment{
		CustomerId: customer.ID,
		Amount:     decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if payment.PaymentMode != models.PaymentModeCash {
		t.Fatalf("default payment mode = %q; want Cash", payment.PaymentMode)
	}

	customer, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer after payment: %v", err)
	}
	if !customer.TotalPaid.Equal(decimal.NewFromInt(100)) || !customer.Balance.Equal(decimal.NewFromInt(136)) {
		t.Fatalf("customer aggregates after payment: %+v", customer)
	}

	// 3) Ledger merges both rows newest-first with the stored summary.
	ledger, err := models.GetCustomerLedger(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerLedger: %v", err)
	}
	if len(ledger.Ledger) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(ledger.Ledger))
	}
	for i := 1; i < len(ledger.Ledger); i++ {
		if ledger.Ledger[i].Date.After(ledger.Ledger[i-1].Date) {
			t.Fatalf("ledger not sorted date descending at index %d", i)
		}
	}
	if !ledger.Summary.Balance.Equal(decimal.NewFromInt(136)) || !ledger.Summary.TotalPaid.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("ledger summary: %+v", ledger.Summary)
	}

	// 4) Updating the bill's items recomputes totals and net-adjusts
	// the customer; the stored previous balance stays fixed.
	updated, err := models.UpdateBill(ctx, bill.ID, &models.UpdateBillInput{
		Items: []*models.NewBillItem{
			{ProductName: "Cotton Fabric", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100), GstRate: decimal.NewFromInt(18), Unit: models.ProductUnitMtr},
		},
	})
	if err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}
	if !updated.Total.Equal(decimal.NewFromInt(118)) {
		t.Fatalf("updated bill total = %s; want 118", updated.Total)
	}
	if !updated.PreviousBalance.IsZero() || !updated.ClosingBalance.Equal(decimal.NewFromInt(118)) {
		t.Fatalf("updated bill balances = %s/%s; want 0/118", updated.PreviousBalance, updated.ClosingBalance)
	}

	customer, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer after update: %v", err)
	}
	if !customer.TotalAmount.Equal(decimal.NewFromInt(118)) || !customer.Balance.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("customer aggregates after bill update: %+v", customer)
	}

	// 5) Deleting bill and payment restores the aggregates to zero.
	if _, err := models.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if _, err := models.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}

	customer, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer after deletes: %v", err)
	}
	if customer.TotalBills != 0 || !customer.TotalAmount.IsZero() || !customer.TotalPaid.IsZero() || !customer.Balance.IsZero() {
		t.Fatalf("customer aggregates not restored: %+v", customer)
	}
}

func TestBillNumberSequenceAndBalanceReplay(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupBillingTestEnv(t)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:   "Patel Traders",
		Mobile: "9123456780",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	billTotals := decimal.Zero
	var lastBill *models.Bill
	for i := 0; i < 10; i++ {
		lastBill, err = models.CreateBill(ctx, &models.NewBill{
			CustomerId: customer.ID,
			Items: []*models.NewBillItem{
				{ProductName: "Buttons", Quantity: decimal.NewFromInt(int64(i + 1)), Rate: decimal.NewFromInt(10)},
			},
		})
		if err != nil {
			t.Fatalf("CreateBill %d: %v", i+1, err)
		}
		billTotals = billTotals.Add(lastBill.Total)
	}
	// Numeric sequencing: after "9" comes "10", not a lexicographic wrap.
	if lastBill.BillNumber != "10" || lastBill.SequenceNo != 10 {
		t.Fatalf("tenth bill number/sequence = %q/%d; want 10/10", lastBill.BillNumber, lastBill.SequenceNo)
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	next, err := models.PeekNextBillNumber(ctx, userId)
	if err != nil {
		t.Fatalf("PeekNextBillNumber: %v", err)
	}
	if next != "11" {
		t.Fatalf("peeked next bill number = %q; want %q", next, "11")
	}
	// Peeking must not consume the sequence.
	eleventh, err := models.CreateBill(ctx, &models.NewBill{
		CustomerId: customer.ID,
		Items: []*models.NewBillItem{
			{ProductName: "Buttons", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill eleventh: %v", err)
	}
	if eleventh.BillNumber != "11" {
		t.Fatalf("eleventh bill number = %q; want %q", eleventh.BillNumber, "11")
	}
	billTotals = billTotals.Add(eleventh.Total)

	payments := []int64{100, 250}
	paymentTotals := decimal.Zero
	for _, amount := range payments {
		p, err := models.CreatePayment(ctx, &models.NewPayment{
			CustomerId: customer.ID,
			Amount:     decimal.NewFromInt(amount),
		})
		if err != nil {
			t.Fatalf("CreatePayment %d: %v", amount, err)
		}
		paymentTotals = paymentTotals.Add(p.Amount)
	}

	// Replay invariant: stored balance equals sum of bills minus payments.
	customer, err = models.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if !customer.Balance.Equal(billTotals.Sub(paymentTotals)) {
		t.Fatalf("balance = %s; want %s", customer.Balance, billTotals.Sub(paymentTotals))
	}
	if customer.TotalBills != 11 {
		t.Fatalf("total bills = %d; want 11", customer.TotalBills)
	}

	// A customer with bills on file cannot be deleted.
	if _, err := models.DeleteCustomer(ctx, customer.ID); !utils.IsInvalidInput(err) {
		t.Fatalf("expected invalid input deleting customer with bills, got %v", err)
	}
}

func TestBillingValidationAndTenantIsolation(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupBillingTestEnv(t)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:   "Sharma & Sons",
		Mobile: "9988776655",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	// Duplicate mobile within the tenant is rejected.
	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:   "Someone Else",
		Mobile: "9988776655",
	}); !utils.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for duplicate mobile, got %v", err)
	}

	// Payments must be positive and name an existing customer.
	if _, err := models.CreatePayment(ctx, &models.NewPayment{
		CustomerId: customer.ID,
		Amount:     decimal.NewFromInt(-5),
	}); !utils.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for negative payment, got %v", err)
	}
	if _, err := models.CreatePayment(ctx, &models.NewPayment{
		CustomerId: 999999,
		Amount:     decimal.NewFromInt(10),
	}); !utils.IsNotFound(err) {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}

	// Bills require at least one valid item.
	if _, err := models.CreateBill(ctx, &models.NewBill{
		CustomerId: customer.ID,
	}); !utils.IsInvalidInput(err) {
		t.Fatalf("expected invalid input for bill without items, got %v", err)
	}

	// A second tenant cannot see or touch the first tenant's customer.
	other, err := models.Register(context.Background(), &models.NewUser{
		Name:     "Other Tenant",
		Email:    "other@billbook.test",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register second tenant: %v", err)
	}
	otherCtx := utils.SetUserIdInContext(context.Background(), other.UserId)
	otherCtx = utils.SetUsernameInContext(otherCtx, other.Name)

	if _, err := models.GetCustomer(otherCtx, customer.ID); !utils.IsNotFound(err) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
	if _, err := models.CreateBill(otherCtx, &models.NewBill{
		CustomerId: customer.ID,
		Items: []*models.NewBillItem{
			{ProductName: "Thread", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
		},
	}); !utils.IsNotFound(err) {
		t.Fatalf("expected not found billing across tenants, got %v", err)
	}

	// The second tenant's sequence starts fresh at "1".
	otherCustomer, err := models.CreateCustomer(otherCtx, &models.NewCustomer{
		Name:   "Own Customer",
		Mobile: "9876501234",
	})
	if err != nil {
		t.Fatalf("CreateCustomer (second tenant): %v", err)
	}
	otherBill, err := models.CreateBill(otherCtx, &models.NewBill{
		CustomerId: otherCustomer.ID,
		Items: []*models.NewBillItem{
			{ProductName: "Thread", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBill (second tenant): %v", err)
	}
	if otherBill.BillNumber != "1" {
		t.Fatalf("second tenant first bill number = %q; want %q", otherBill.BillNumber, "1")
	}

	// Backups export only the requesting tenant's records.
	backup, err := models.GetBackup(ctx)
	if err != nil {
		t.Fatalf("GetBackup: %v", err)
	}
	if backup.Version != "1.0" {
		t.Fatalf("backup version = %q; want %q", backup.Version, "1.0")
	}
	if backup.Data.User == nil || backup.Data.User.Email == "other@billbook.test" {
		t.Fatalf("backup user = %+v; want the first tenant's record", backup.Data.User)
	}
	if len(backup.Data.Customers) != 1 || backup.Data.Customers[0].Name != "Sharma & Sons" {
		t.Fatalf("backup customers = %+v; want only Sharma & Sons", backup.Data.Customers)
	}
	if len(backup.Data.Bills) != 0 {
		t.Fatalf("backup bills = %d; want 0", len(backup.Data.Bills))
	}

	otherBackup, err := models.GetBackup(otherCtx)
	if err != nil {
		t.Fatalf("GetBackup (second tenant): %v", err)
	}
	if len(otherBackup.Data.Customers) != 1 || otherBackup.Data.Customers[0].Name != "Own Customer" {
		t.Fatalf("second tenant backup customers = %+v", otherBackup.Data.Customers)
	}
	if len(otherBackup.Data.Bills) != 1 || len(otherBackup.Data.Bills[0].Items) != 1 {
		t.Fatalf("second tenant backup bills = %+v; want one bill with one item", otherBackup.Data.Bills)
	}
}

// setupBillingTestEnv starts throwaway redis/mysql containers, connects
// the config singletons, migrates the schema, registers a tenant and
// returns a context scoped to it.
func setupBillingTestEnv(t *testing.T) context.Context {
	t.Helper()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "billbook_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	auth, err := models.Register(context.Background(), &models.NewUser{
		Name:     "Test Tenant",
		Email:    fmt.Sprintf("tenant-%d@billbook.test", time.Now().UnixNano()),
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx := utils.SetUserIdInContext(context.Background(), auth.UserId)
	ctx = utils.SetUsernameInContext(ctx, auth.Name)
	return ctx
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("billbook-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("billbook-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=billbook_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
