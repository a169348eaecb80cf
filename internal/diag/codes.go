package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Semantic analysis: typing, definite assignment, linearity.
	SemaInfo                    Code = 3000
	SemaUnknownName             Code = 3001
	SemaDuplicateDefinition     Code = 3002
	SemaTypeMismatch            Code = 3003
	SemaInconsistentBindingType Code = 3004
	SemaUnresolvedParameter     Code = 3005
	SemaUseBeforeDefinition     Code = 3006
	SemaUseAfterConsume         Code = 3007
	SemaResourceLeak            Code = 3008
	SemaInconsistentConsumption Code = 3009
	SemaArityMismatch           Code = 3010
	SemaNotCallable             Code = 3011
	SemaNotAStruct              Code = 3012
	SemaUnknownField            Code = 3013
	SemaMissingField            Code = 3014
	SemaConditionNotBool        Code = 3015
	SemaInvalidIndex            Code = 3016
	SemaReturnMismatch          Code = 3017
	SemaLinearDiscard           Code = 3018
	SemaLoopStateChange         Code = 3019
	SemaBorrowViolation         Code = 3020
	SemaRecursiveStruct         Code = 3021
	SemaNameStyle               Code = 3100

	// Monomorphisation.
	MonoInfo                   Code = 4000
	MonoArityMismatch          Code = 4001
	MonoUnresolvedGeneric      Code = 4002
	MonoRecursiveInstantiation Code = 4003

	// Input/output while loading modules.
	IOInfo          Code = 5000
	IOLoadFileError Code = 5001
	IODecodeError   Code = 5002
)

func (c Code) String() string {
	return fmt.Sprintf("QLL%04d", uint16(c))
}
