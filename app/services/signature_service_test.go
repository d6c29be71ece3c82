package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

type fakeVoters struct {
	voters map[primitive.ObjectID]*models.Voter
}

func newFakeVoters(voters ...*models.Voter) *fakeVoters {
	f := &fakeVoters{voters: make(map[primitive.ObjectID]*models.Voter)}
	for _, v := range voters {
		f.voters[v.ID] = v
	}
	return f
}

func (f *fakeVoters) FindByID(_ context.Context, id primitive.ObjectID) (*models.Voter, error) {
	return f.voters[id], nil
}

// fakeRecorder mirrors the transactional store: insert plus counter bump,
// refusing when the batch is no longer active.
type fakeRecorder struct {
	batches *fakeBatches
	rows    []models.Signature
}

func (f *fakeRecorder) Record(_ context.Context, sig *models.Signature) (primitive.ObjectID, error) {
	if !f.batches.increment(sig.BatchID, sig.Classification) {
		return primitive.NilObjectID, ErrNoActiveSession
	}
	sig.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *sig)
	return sig.ID, nil
}

type signatureFixture struct {
	svc      *SignatureService
	batches  *fakeBatches
	recorder *fakeRecorder
	batchID  primitive.ObjectID
}

func newSignatureFixture(t *testing.T, voters *fakeVoters) *signatureFixture {
	t.Helper()
	batches := newFakeBatches()
	batch := &models.Batch{
		EntererID: "user-1",
		Status:    models.BatchStatusActive,
		StartedAt: time.Now(),
	}
	require.NoError(t, batches.Insert(context.Background(), batch))

	recorder := &fakeRecorder{batches: batches}
	return &signatureFixture{
		svc:      NewSignatureService(batches, voters, recorder, zap.NewNop()),
		batches:  batches,
		recorder: recorder,
		batchID:  batch.ID,
	}
}

func registeredVoter() *models.Voter {
	return &models.Voter{
		ID:                  primitive.NewObjectID(),
		SOSVoterID:          "OH123",
		FirstName:           "Jane",
		LastName:            "Doe",
		ResidentialAddress1: "123 Main St",
		ResidentialCity:     "Columbus",
		RegisteredCity:      "COLUMBUS",
	}
}

func TestRecordMatchBumpsExactlyOneCounter(t *testing.T) {
	voter := registeredVoter()
	fx := newSignatureFixture(t, newFakeVoters(voter))

	res, err := fx.svc.RecordMatch(context.Background(), "user-1", &voter.ID, "Jane Doe / 123 Main St")
	require.NoError(t, err)
	assert.True(t, res.Cleared)
	assert.Equal(t, fx.batchID, res.BatchID)

	counters := fx.batches.batches[fx.batchID].Counters
	assert.Equal(t, models.BatchCounters{Matches: 1}, counters)

	require.Len(t, fx.recorder.rows, 1)
	row := fx.recorder.rows[0]
	assert.Equal(t, models.ClassificationPersonMatch, row.Classification)
	require.NotNil(t, row.VoterID)
	assert.Equal(t, voter.ID, *row.VoterID)
	assert.Equal(t, "123 Main St", row.ResidentialAddress1, "voter address is denormalized onto the row")
}

func TestRecordAddressOnlyKeepsBestGuess(t *testing.T) {
	voter := registeredVoter()
	fx := newSignatureFixture(t, newFakeVoters(voter))

	_, err := fx.svc.RecordAddressOnly(context.Background(), "user-1", &voter.ID, "illegible / 123 Main St")
	require.NoError(t, err)

	counters := fx.batches.batches[fx.batchID].Counters
	assert.Equal(t, models.BatchCounters{AddressOnly: 1}, counters)
	require.NotNil(t, fx.recorder.rows[0].VoterID)
}

func TestRecordNoMatchHasNoVoterRef(t *testing.T) {
	fx := newSignatureFixture(t, newFakeVoters())

	_, err := fx.svc.RecordNoMatch(context.Background(), "user-1", "unknown signer")
	require.NoError(t, err)

	counters := fx.batches.batches[fx.batchID].Counters
	assert.Equal(t, models.BatchCounters{NoMatch: 1}, counters)
	assert.Nil(t, fx.recorder.rows[0].VoterID)
}

func TestRecordSignatureDropsVoterOnNoMatch(t *testing.T) {
	voter := registeredVoter()
	fx := newSignatureFixture(t, newFakeVoters(voter))

	_, err := fx.svc.RecordSignature(context.Background(), "user-1", models.ClassificationNoMatch, &voter.ID, "x")
	require.NoError(t, err)
	assert.Nil(t, fx.recorder.rows[0].VoterID)
}

func TestRecordSignatureRejectsUnknownClassification(t *testing.T) {
	fx := newSignatureFixture(t, newFakeVoters())
	_, err := fx.svc.RecordSignature(context.Background(), "user-1", "maybe", nil, "x")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Empty(t, fx.recorder.rows)
}

func TestRecordWithoutActiveSession(t *testing.T) {
	batches := newFakeBatches()
	recorder := &fakeRecorder{batches: batches}
	svc := NewSignatureService(batches, newFakeVoters(), recorder, zap.NewNop())

	_, err := svc.RecordNoMatch(context.Background(), "user-1", "x")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, recorder.rows)
}

func TestRecordStaleVoterRefFailsSoft(t *testing.T) {
	fx := newSignatureFixture(t, newFakeVoters())
	staleID := primitive.NewObjectID()

	_, err := fx.svc.RecordMatch(context.Background(), "user-1", &staleID, "x")
	require.NoError(t, err, "a stale reference must not reject the operator's decision")

	row := fx.recorder.rows[0]
	assert.Nil(t, row.VoterID)
	assert.Equal(t, models.ClassificationPersonMatch, row.Classification)
}
