package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropcars/internal/models"
	"dropcars/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orchestratorFixture struct {
	service     AssignmentService
	orders      *fakeOrderRepo
	assignments *fakeAssignmentRepo
	drivers     *fakeDriverRepo
	cars        *fakeCarRepo
	ledger      *fakeWalletRepo
	sms         *recordingSMS

	ownerID  primitive.ObjectID
	orderID  primitive.ObjectID
	driverID primitive.ObjectID
	carID    primitive.ObjectID
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	f := &orchestratorFixture{
		orders:      newFakeOrderRepo(),
		assignments: newFakeAssignmentRepo(),
		drivers:     newFakeDriverRepo(),
		cars:        newFakeCarRepo(),
		ledger:      newFakeWalletRepo(),
		sms:         &recordingSMS{},
		ownerID:     primitive.NewObjectID(),
	}

	log := testLogger(t)
	wallet := NewWalletService(f.ledger, nil, nil, false, log)
	f.service = NewAssignmentService(f.orders, f.assignments, f.drivers, f.cars, wallet, f.sms, 30*time.Minute, utils.PlatformCommission, log)

	order := &models.Order{
		OwnerID:        f.ownerID,
		TripType:       models.TripTypeOneway,
		CustomerNumber: "+919876543210",
		PickupLocation: "Chennai",
		DropLocation:   "Bangalore",
		EstimatedKM:    150,
		CostPerKM:      10,
	}
	if err := f.orders.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	f.orderID = order.ID

	driver := &models.Driver{
		OwnerID:       f.ownerID,
		FullName:      "Ravi Kumar",
		PrimaryNumber: "+919876500001",
		Status:        models.DriverStatusOnline,
	}
	if err := f.drivers.Create(context.Background(), driver); err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	f.driverID = driver.ID

	car := &models.Car{
		OwnerID:     f.ownerID,
		CarNumber:   "TN-09-AB-1234",
		IsAvailable: true,
	}
	if err := f.cars.Create(context.Background(), car); err != nil {
		t.Fatalf("seed car: %v", err)
	}
	f.carID = car.ID

	return f
}

func (f *orchestratorFixture) mustAccept(t *testing.T) *models.Assignment {
	t.Helper()
	a, err := f.service.Accept(context.Background(), f.ownerID, f.orderID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return a
}

func (f *orchestratorFixture) mustBind(t *testing.T, assignmentID primitive.ObjectID) *models.Assignment {
	t.Helper()
	a, err := f.service.BindResources(context.Background(), f.ownerID, assignmentID, f.driverID, f.carID)
	if err != nil {
		t.Fatalf("BindResources: %v", err)
	}
	return a
}

func TestFullTripLifecycle(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	if accepted.Status != models.AssignmentStatusAccepted {
		t.Fatalf("status after accept = %s", accepted.Status)
	}

	resourced := f.mustBind(t, accepted.ID)
	if resourced.Status != models.AssignmentStatusResourced {
		t.Fatalf("status after bind = %s", resourced.Status)
	}
	if len(f.sms.messages) != 1 {
		t.Errorf("expected one customer SMS, got %d", len(f.sms.messages))
	}

	started, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg")
	if err != nil {
		t.Fatalf("StartTrip: %v", err)
	}
	if started.Status != models.AssignmentStatusInProgress {
		t.Fatalf("status after start = %s", started.Status)
	}

	driver, _ := f.drivers.GetByID(ctx, f.driverID)
	if driver.Status != models.DriverStatusDriving {
		t.Errorf("driver status after start = %s, want DRIVING", driver.Status)
	}

	done, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", true)
	if err != nil {
		t.Fatalf("EndTrip: %v", err)
	}
	if done.Status != models.AssignmentStatusCompleted {
		t.Fatalf("status after end = %s", done.Status)
	}
	if done.DistanceKM != 150 {
		t.Errorf("distance = %d, want 150", done.DistanceKM)
	}
	if done.Fare != 1500 {
		t.Errorf("fare = %v, want 1500", done.Fare)
	}

	balance, err := f.ledger.BalanceByOwner(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("BalanceByOwner: %v", err)
	}
	if balance != -utils.PlatformCommission {
		t.Errorf("balance after commission = %v, want %v", balance, -utils.PlatformCommission)
	}
	txns, _ := f.ledger.ListByOwner(ctx, f.ownerID, 10)
	if len(txns) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(txns))
	}
	if txns[0].Metadata["assignment_id"] != accepted.ID.Hex() {
		t.Errorf("commission debit not tagged with assignment id")
	}

	driver, _ = f.drivers.GetByID(ctx, f.driverID)
	if driver.Status != models.DriverStatusOnline || driver.CurrentAssignment != nil {
		t.Errorf("driver not released after completion: status=%s assignment=%v", driver.Status, driver.CurrentAssignment)
	}

	order, _ := f.orders.GetByID(ctx, f.orderID)
	if order.TripStatus != models.TripStatusCompleted {
		t.Errorf("order status = %s, want COMPLETED", order.TripStatus)
	}
}

func TestAcceptIsIdempotentForSameOwner(t *testing.T) {
	f := newOrchestratorFixture(t)

	first := f.mustAccept(t)
	second := f.mustAccept(t)

	if first.ID != second.ID {
		t.Errorf("re-accept created a second assignment: %s vs %s", first.ID.Hex(), second.ID.Hex())
	}
}

func TestAcceptRejectsForeignOrder(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.service.Accept(context.Background(), primitive.NewObjectID(), f.orderID)
	if err == nil {
		t.Fatal("expected error accepting another owner's order")
	}
}

func TestBindRejectsProcessingDriver(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	if err := f.drivers.UpdateStatus(ctx, f.driverID, models.DriverStatusProcessing); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	_, err := f.service.BindResources(ctx, f.ownerID, accepted.ID, f.driverID, f.carID)
	if !errors.Is(err, ErrNotAssignable) {
		t.Fatalf("err = %v, want ErrNotAssignable", err)
	}

	stored, _ := f.assignments.GetByID(ctx, accepted.ID)
	if stored.Status != models.AssignmentStatusAccepted {
		t.Errorf("assignment moved to %s on a rejected bind", stored.Status)
	}
}

func TestBindRejectsCarOnActiveAssignment(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)

	// Second order, same car.
	order := &models.Order{OwnerID: f.ownerID, TripType: models.TripTypeOneway, PickupLocation: "Chennai", CostPerKM: 10}
	if err := f.orders.Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	driver := &models.Driver{OwnerID: f.ownerID, FullName: "Second Driver", PrimaryNumber: "+919876500002", Status: models.DriverStatusOnline}
	if err := f.drivers.Create(ctx, driver); err != nil {
		t.Fatalf("seed driver: %v", err)
	}

	second, err := f.service.Accept(ctx, f.ownerID, order.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	_, err = f.service.BindResources(ctx, f.ownerID, second.ID, driver.ID, f.carID)
	if !errors.Is(err, ErrNotAssignable) {
		t.Fatalf("err = %v, want ErrNotAssignable for a car already on an active assignment", err)
	}
}

func TestStartTripRequiresEvidence(t *testing.T) {
	f := newOrchestratorFixture(t)

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)

	_, err := f.service.StartTrip(context.Background(), f.driverID, accepted.ID, 10230, "")
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("err = %v, want field validation error", err)
	}
}

func TestEndTripWithoutStartFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)

	_, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", true)
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("err = %v, want ErrPrecondition", err)
	}

	balance, _ := f.ledger.BalanceByOwner(ctx, f.ownerID)
	if balance != 0 {
		t.Errorf("commission posted for a trip that never started: balance=%v", balance)
	}
}

func TestEndTripRejectsNonIncreasingOdometer(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}

	for _, endKM := range []int64{10230, 10000} {
		if _, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, endKM, "s3://evidence/end.jpg", true); err == nil {
			t.Errorf("EndTrip accepted end_km=%d with start_km=10230", endKM)
		}
	}

	balance, _ := f.ledger.BalanceByOwner(ctx, f.ownerID)
	if balance != 0 {
		t.Errorf("commission posted on rejected end: balance=%v", balance)
	}
}

func TestEndTripRequiresCustomerAcknowledgement(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}

	_, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", false)
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("err = %v, want field validation error", err)
	}
}

func TestEndTripByWrongDriverFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}

	if _, err := f.service.EndTrip(ctx, primitive.NewObjectID(), accepted.ID, 10380, "s3://evidence/end.jpg", true); err == nil {
		t.Fatal("expected error ending a trip bound to a different driver")
	}
}

func TestCancelReleasesBoundDriver(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)

	cancelled, err := f.service.Cancel(ctx, f.ownerID, accepted.ID, "customer no-show")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.AssignmentStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelReason != "customer no-show" {
		t.Errorf("cancel reason = %q", cancelled.CancelReason)
	}

	driver, _ := f.drivers.GetByID(ctx, f.driverID)
	if driver.CurrentAssignment != nil {
		t.Error("driver still holds the cancelled assignment")
	}
}

func TestCancelCompletedTripFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}
	if _, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", true); err != nil {
		t.Fatalf("EndTrip: %v", err)
	}

	if _, err := f.service.Cancel(ctx, f.ownerID, accepted.ID, "too late"); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("err = %v, want ErrPrecondition", err)
	}
}

func TestDoubleEndTripSettlesOnce(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}
	if _, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", true); err != nil {
		t.Fatalf("EndTrip: %v", err)
	}

	if _, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10400, "s3://evidence/retry.jpg", true); err == nil {
		t.Fatal("expected error on repeated end of a completed trip")
	}

	balance, _ := f.ledger.BalanceByOwner(ctx, f.ownerID)
	if balance != -utils.PlatformCommission {
		t.Errorf("balance = %v, want exactly one commission debit", balance)
	}
}

func TestEndTripFarePricesFixedCharges(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	order := &models.Order{
		OwnerID:         f.ownerID,
		TripType:        models.TripTypeOneway,
		PickupLocation:  "Chennai",
		DropLocation:    "Ooty",
		EstimatedKM:     100,
		CostPerKM:       10,
		BaseFare:        200,
		DriverAllowance: 300,
		TollCharges:     50,
	}
	if err := f.orders.Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	accepted, err := f.service.Accept(ctx, f.ownerID, order.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := f.service.BindResources(ctx, f.ownerID, accepted.ID, f.driverID, f.carID); err != nil {
		t.Fatalf("BindResources: %v", err)
	}
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 500, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}

	done, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 600, "s3://evidence/end.jpg", true)
	if err != nil {
		t.Fatalf("EndTrip: %v", err)
	}

	// The 1550 quoted total spread over 100 estimated km prices the 100
	// recorded km at 15.5, not at the bare 10 per-km cost.
	if done.Fare != 1550 {
		t.Errorf("fare = %v, want 1550", done.Fare)
	}
}

func TestGetForOrderHidesForeignOwnersAssignment(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	f.mustAccept(t)

	if _, err := f.service.GetForOrder(ctx, primitive.NewObjectID(), f.orderID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign owner, got %v", err)
	}

	if _, err := f.service.GetForOrder(ctx, f.ownerID, f.orderID); err != nil {
		t.Fatalf("owning owner should still read the assignment: %v", err)
	}
}

func TestEndTripReversesCommissionWhenCompletionWriteFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)
	f.mustBind(t, accepted.ID)
	if _, err := f.service.StartTrip(ctx, f.driverID, accepted.ID, 10230, "s3://evidence/start.jpg"); err != nil {
		t.Fatalf("StartTrip: %v", err)
	}

	f.assignments.replaceErr = errors.New("write timeout")
	if _, err := f.service.EndTrip(ctx, f.driverID, accepted.ID, 10380, "s3://evidence/end.jpg", true); err == nil {
		t.Fatal("expected the failed completion write to surface")
	}
	f.assignments.replaceErr = nil

	balance, _ := f.ledger.BalanceByOwner(ctx, f.ownerID)
	if balance != 0 {
		t.Errorf("balance = %v, want the commission debit fully reversed", balance)
	}
	txns, _ := f.ledger.ListByOwner(ctx, f.ownerID, 0)
	if len(txns) != 2 {
		t.Fatalf("expected debit and reversal entries, got %d", len(txns))
	}

	stored, _ := f.assignments.GetByID(ctx, accepted.ID)
	if stored.Status != models.AssignmentStatusInProgress {
		t.Errorf("status = %s, want trip still in progress", stored.Status)
	}
}

func TestLapsedAssignmentExpiresOnRead(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)

	svc := f.service.(*assignmentService)
	svc.now = func() time.Time { return accepted.ExpiresAt.Add(time.Minute) }

	got, err := f.service.GetForOrder(ctx, f.ownerID, f.orderID)
	if err != nil {
		t.Fatalf("GetForOrder: %v", err)
	}
	if got.Status != models.AssignmentStatusExpired {
		t.Fatalf("status = %s, want EXPIRED", got.Status)
	}

	stored, _ := f.assignments.GetByID(ctx, accepted.ID)
	if stored.Status != models.AssignmentStatusExpired {
		t.Errorf("expiry not persisted: stored status = %s", stored.Status)
	}

	if _, err := f.service.BindResources(ctx, f.ownerID, accepted.ID, f.driverID, f.carID); err == nil {
		t.Fatal("expected error binding an expired assignment")
	}
}

func TestStaleWriteSurfacesFromConcurrentTransition(t *testing.T) {
	f := newOrchestratorFixture(t)
	ctx := context.Background()

	accepted := f.mustAccept(t)

	// Another device cancels between our read and our write.
	stored, _ := f.assignments.GetByID(ctx, accepted.ID)
	if err := models.ApplyTransition(stored, models.AssignmentStatusCancelled, time.Now()); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if err := f.assignments.Replace(ctx, stored, models.AssignmentStatusAccepted, accepted.Version); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, err := f.service.BindResources(ctx, f.ownerID, accepted.ID, f.driverID, f.carID); err == nil {
		t.Fatal("expected error binding a concurrently cancelled assignment")
	}
}
