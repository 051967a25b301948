package model

import "ignita/internal/board"

// MutationRequest is the input of a board procedure.
type MutationRequest interface {
	DocID() string
	Validate() error
	Operation() Operation
}

func validateMutation(docID string, params interface{ Validate() error }) error {
	if err := validateDocumentID(docID); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return NewError(CodeBadRequest, err.Error(), err)
	}
	return nil
}

type DeleteItemRequest struct {
	DocumentID string `json:"documentId"`
	board.DeleteItem
}

func (r DeleteItemRequest) DocID() string   { return r.DocumentID }
func (r DeleteItemRequest) Validate() error { return validateMutation(r.DocumentID, r.DeleteItem) }
func (r DeleteItemRequest) Operation() Operation {
	return BoardOperation(ProcDeleteItem, r.DeleteItem)
}

type MoveItemRequest struct {
	DocumentID string `json:"documentId"`
	board.MoveItem
}

func (r MoveItemRequest) DocID() string   { return r.DocumentID }
func (r MoveItemRequest) Validate() error { return validateMutation(r.DocumentID, r.MoveItem) }
func (r MoveItemRequest) Operation() Operation {
	return BoardOperation(ProcMoveItem, r.MoveItem)
}

type ReorderContainersRequest struct {
	DocumentID string `json:"documentId"`
	board.ReorderContainers
}

func (r ReorderContainersRequest) DocID() string { return r.DocumentID }
func (r ReorderContainersRequest) Validate() error {
	return validateMutation(r.DocumentID, r.ReorderContainers)
}
func (r ReorderContainersRequest) Operation() Operation {
	return BoardOperation(ProcReorderContainers, r.ReorderContainers)
}

type UpdateItemTitleRequest struct {
	DocumentID string `json:"documentId"`
	board.UpdateItemTitle
}

func (r UpdateItemTitleRequest) DocID() string { return r.DocumentID }
func (r UpdateItemTitleRequest) Validate() error {
	return validateMutation(r.DocumentID, r.UpdateItemTitle)
}
func (r UpdateItemTitleRequest) Operation() Operation {
	return BoardOperation(ProcUpdateItemTitle, r.UpdateItemTitle)
}

type UpdateItemBodyRequest struct {
	DocumentID string `json:"documentId"`
	board.UpdateItemBody
}

func (r UpdateItemBodyRequest) DocID() string { return r.DocumentID }
func (r UpdateItemBodyRequest) Validate() error {
	return validateMutation(r.DocumentID, r.UpdateItemBody)
}
func (r UpdateItemBodyRequest) Operation() Operation {
	return BoardOperation(ProcUpdateItemBody, r.UpdateItemBody)
}

type AddItemRequest struct {
	DocumentID string `json:"documentId"`
	board.AddItem
}

func (r AddItemRequest) DocID() string   { return r.DocumentID }
func (r AddItemRequest) Validate() error { return validateMutation(r.DocumentID, r.AddItem) }
func (r AddItemRequest) Operation() Operation {
	return BoardOperation(ProcAddItem, r.AddItem)
}

type DeleteContainerRequest struct {
	DocumentID string `json:"documentId"`
	board.DeleteContainer
}

func (r DeleteContainerRequest) DocID() string { return r.DocumentID }
func (r DeleteContainerRequest) Validate() error {
	return validateMutation(r.DocumentID, r.DeleteContainer)
}
func (r DeleteContainerRequest) Operation() Operation {
	return BoardOperation(ProcDeleteContainer, r.DeleteContainer)
}

type UpdateContainerRequest struct {
	DocumentID string `json:"documentId"`
	board.UpdateContainer
}

func (r UpdateContainerRequest) DocID() string { return r.DocumentID }
func (r UpdateContainerRequest) Validate() error {
	return validateMutation(r.DocumentID, r.UpdateContainer)
}
func (r UpdateContainerRequest) Operation() Operation {
	return BoardOperation(ProcUpdateContainer, r.UpdateContainer)
}

type AddContainerRequest struct {
	DocumentID string `json:"documentId"`
	board.AddContainer
}

func (r AddContainerRequest) DocID() string { return r.DocumentID }
func (r AddContainerRequest) Validate() error {
	return validateMutation(r.DocumentID, r.AddContainer)
}
func (r AddContainerRequest) Operation() Operation {
	return BoardOperation(ProcAddContainer, r.AddContainer)
}
