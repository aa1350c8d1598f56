package service

import (
	"context"
	"fmt"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
)

// ResolvedPolicy is the document type configuration a finalization runs under.
// It is resolved once and frozen onto the document.
type ResolvedPolicy struct {
	Code             string
	MovesStock       bool
	ImpactsValuation bool
	OperationSign    int
	NumeratorCode    string
	MovementType     model.MovementType
}

func (p ResolvedPolicy) Inbound() bool {
	return p.OperationSign > 0
}

// defaultMovementType is used when a policy does not name its movement kind.
func defaultMovementType(sign int) model.MovementType {
	if sign > 0 {
		return model.MovementSupplierReceipt
	}
	return model.MovementSaleIssue
}

func resolvePolicy(p *model.DocumentTypePolicy) (ResolvedPolicy, error) {
	const op = "resolvePolicy"
	if p.OperationSign != model.SignInbound && p.OperationSign != model.SignOutbound {
		return ResolvedPolicy{}, configurationError(op, "operation_sign",
			fmt.Sprintf("document type '%s' has operation sign %d", p.Code, p.OperationSign))
	}
	if p.NumeratorCode == "" {
		return ResolvedPolicy{}, configurationError(op, "numerator_code",
			fmt.Sprintf("document type '%s' has no numerator", p.Code))
	}
	movementType := p.MovementType
	if movementType == "" {
		movementType = defaultMovementType(p.OperationSign)
	}
	if !movementType.Valid() {
		return ResolvedPolicy{}, configurationError(op, "movement_type",
			fmt.Sprintf("document type '%s' has unknown movement type '%s'", p.Code, movementType))
	}
	return ResolvedPolicy{
		Code:             p.Code,
		MovesStock:       p.MovesStock,
		ImpactsValuation: p.ImpactsValuation,
		OperationSign:    p.OperationSign,
		NumeratorCode:    p.NumeratorCode,
		MovementType:     movementType,
	}, nil
}

// frozenPolicy reads the policy copy stored on a finalized document.
func frozenPolicy(doc *model.Document) ResolvedPolicy {
	return ResolvedPolicy{
		Code:             doc.DocumentTypeCode,
		MovesStock:       doc.PolicyMovesStock,
		ImpactsValuation: doc.PolicyImpactsValuation,
		OperationSign:    doc.PolicyOperationSign,
		NumeratorCode:    doc.NumeratorCode,
		MovementType:     doc.PolicyMovementType,
	}
}

func freezePolicy(doc *model.Document, p ResolvedPolicy) {
	doc.DocumentTypeCode = p.Code
	doc.NumeratorCode = p.NumeratorCode
	doc.PolicyMovesStock = p.MovesStock
	doc.PolicyImpactsValuation = p.ImpactsValuation
	doc.PolicyOperationSign = p.OperationSign
	doc.PolicyMovementType = p.MovementType
}

// lookupPolicy resolves a tenant's document type or fails with a configuration error.
func lookupPolicy(repos *repository.Repositories, tenantID uuid.UUID, code string) (ResolvedPolicy, error) {
	policy, err := repos.Policies.FindByCode(tenantID, code)
	if repository.IsNotFound(err) {
		return ResolvedPolicy{}, configurationError("resolvePolicy", "document_type_code",
			fmt.Sprintf("document type '%s' is not configured", code))
	}
	if err != nil {
		return ResolvedPolicy{}, err
	}
	return resolvePolicy(policy)
}

type UpsertPolicyInput struct {
	Code             string `json:"code" validate:"required,max=50"`
	Description      string `json:"description" validate:"max=255"`
	MovesStock       bool   `json:"moves_stock"`
	ImpactsValuation bool   `json:"impacts_valuation"`
	OperationSign    int    `json:"operation_sign" validate:"oneof=1 -1"`
	NumeratorCode    string `json:"numerator_code" validate:"required,max=50"`
	MovementType     string `json:"movement_type" validate:"omitempty,oneof=INITIAL_LOAD SUPPLIER_RECEIPT SALE_ISSUE CUSTOMER_RETURN SUPPLIER_RETURN ADJUSTMENT TRANSFER_IN TRANSFER_OUT"`
}

type PolicyService interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, code string) (ResolvedPolicy, error)
	List(ctx context.Context, actor Actor) ([]model.DocumentTypePolicy, error)
	Upsert(ctx context.Context, actor Actor, input UpsertPolicyInput) (*model.DocumentTypePolicy, error)
}

type policyService struct {
	uow repository.UnitOfWork
}

func NewPolicyService(uow repository.UnitOfWork) PolicyService {
	return &policyService{uow: uow}
}

func (s *policyService) Resolve(ctx context.Context, tenantID uuid.UUID, code string) (ResolvedPolicy, error) {
	return lookupPolicy(s.uow.Read(scoped(ctx, tenantID)), tenantID, code)
}

func (s *policyService) List(ctx context.Context, actor Actor) ([]model.DocumentTypePolicy, error) {
	if err := actor.require(model.PrivDocumentView); err != nil {
		return nil, err
	}
	return s.uow.Read(scoped(ctx, actor.TenantID)).Policies.FindAll(actor.TenantID)
}

// Upsert creates or replaces a document type policy. Finalized documents keep their frozen copy.
func (s *policyService) Upsert(ctx context.Context, actor Actor, input UpsertPolicyInput) (*model.DocumentTypePolicy, error) {
	const op = "UpsertPolicy"
	if err := actor.require(model.PrivPolicyManage); err != nil {
		return nil, err
	}
	if err := validateInput(op, input); err != nil {
		return nil, err
	}

	var saved *model.DocumentTypePolicy
	err := s.uow.Transaction(scoped(ctx, actor.TenantID), func(repos *repository.Repositories) error {
		policy, err := repos.Policies.FindByCode(actor.TenantID, input.Code)
		isNew := repository.IsNotFound(err)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			policy = &model.DocumentTypePolicy{Code: input.Code}
			policy.TenantID = actor.TenantID
			policy.CreatedBy = actor.UserID
		}
		policy.Description = input.Description
		policy.MovesStock = input.MovesStock
		policy.ImpactsValuation = input.ImpactsValuation
		policy.OperationSign = input.OperationSign
		policy.NumeratorCode = input.NumeratorCode
		policy.MovementType = model.MovementType(input.MovementType)
		policy.UpdatedBy = actor.UserID

		if _, err := resolvePolicy(policy); err != nil {
			return err
		}
		if isNew {
			err = repos.Policies.Create(policy)
		} else {
			err = repos.Policies.Update(policy)
		}
		if err != nil {
			return err
		}
		saved = policy
		return nil
	})
	if err != nil {
		return nil, withContext(err, actor.TenantID, uuid.Nil)
	}
	return saved, nil
}
