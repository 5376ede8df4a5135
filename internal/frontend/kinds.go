package frontend

// CursorKind classifies declaration cursors. The set mirrors the libclang
// kinds the builder distinguishes; everything else maps to an Unexposed kind.
type CursorKind uint16

const (
	CursorInvalid CursorKind = iota
	CursorTranslationUnit
	CursorNamespace
	CursorStructDecl
	CursorClassDecl
	CursorUnionDecl
	CursorEnumDecl
	CursorEnumConstantDecl
	CursorFunctionDecl
	CursorCXXMethod
	CursorConstructor
	CursorDestructor
	CursorConversionFunction
	CursorFieldDecl
	CursorVarDecl
	CursorParmDecl
	CursorTypedefDecl
	CursorTypeAliasDecl
	CursorClassTemplate
	CursorClassTemplatePartialSpecialization
	CursorFunctionTemplate
	CursorLinkageSpec
	CursorUnexposedDecl
	CursorUnexposedAttr
	CursorBaseSpecifier
	CursorAccessSpecifier
	CursorFriendDecl
	CursorTypeRef
	CursorUsingDirective
	CursorUsingDeclaration
	CursorNamespaceAlias
	CursorStaticAssert
	CursorNoDeclFound
)

var cursorKindNames = [...]string{
	CursorInvalid:                            "Invalid",
	CursorTranslationUnit:                    "TranslationUnit",
	CursorNamespace:                          "Namespace",
	CursorStructDecl:                         "StructDecl",
	CursorClassDecl:                          "ClassDecl",
	CursorUnionDecl:                          "UnionDecl",
	CursorEnumDecl:                           "EnumDecl",
	CursorEnumConstantDecl:                   "EnumConstantDecl",
	CursorFunctionDecl:                       "FunctionDecl",
	CursorCXXMethod:                          "CXXMethod",
	CursorConstructor:                        "Constructor",
	CursorDestructor:                         "Destructor",
	CursorConversionFunction:                 "ConversionFunction",
	CursorFieldDecl:                          "FieldDecl",
	CursorVarDecl:                            "VarDecl",
	CursorParmDecl:                           "ParmDecl",
	CursorTypedefDecl:                        "TypedefDecl",
	CursorTypeAliasDecl:                      "TypeAliasDecl",
	CursorClassTemplate:                      "ClassTemplate",
	CursorClassTemplatePartialSpecialization: "ClassTemplatePartialSpecialization",
	CursorFunctionTemplate:                   "FunctionTemplate",
	CursorLinkageSpec:                        "LinkageSpec",
	CursorUnexposedDecl:                      "UnexposedDecl",
	CursorUnexposedAttr:                      "UnexposedAttr",
	CursorBaseSpecifier:                      "BaseSpecifier",
	CursorAccessSpecifier:                    "AccessSpecifier",
	CursorFriendDecl:                         "FriendDecl",
	CursorTypeRef:                            "TypeRef",
	CursorUsingDirective:                     "UsingDirective",
	CursorUsingDeclaration:                   "UsingDeclaration",
	CursorNamespaceAlias:                     "NamespaceAlias",
	CursorStaticAssert:                       "StaticAssert",
	CursorNoDeclFound:                        "NoDeclFound",
}

func (k CursorKind) String() string {
	if int(k) < len(cursorKindNames) && cursorKindNames[k] != "" {
		return cursorKindNames[k]
	}
	return "Unknown"
}

// IsAggregate reports class, struct and union declarations
func (k CursorKind) IsAggregate() bool {
	return k == CursorStructDecl || k == CursorClassDecl || k == CursorUnionDecl
}

// IsFunction reports free functions and every kind of member function
func (k CursorKind) IsFunction() bool {
	switch k {
	case CursorFunctionDecl, CursorCXXMethod, CursorConstructor, CursorDestructor, CursorConversionFunction:
		return true
	}
	return false
}

// IsMember reports member function kinds
func (k CursorKind) IsMember() bool {
	return k.IsFunction() && k != CursorFunctionDecl
}

// TypeKind classifies type descriptors
type TypeKind uint16

const (
	TypeInvalid TypeKind = iota
	TypeUnexposed
	TypeVoid
	TypeBool
	TypeCharU
	TypeUChar
	TypeChar8
	TypeChar16
	TypeChar32
	TypeUShort
	TypeUInt
	TypeULong
	TypeULongLong
	TypeUInt128
	TypeCharS
	TypeSChar
	TypeWChar
	TypeShort
	TypeInt
	TypeLong
	TypeLongLong
	TypeInt128
	TypeHalf
	TypeFloat
	TypeDouble
	TypeLongDouble
	TypeFloat128
	TypeNullPtr
	TypePointer
	TypeLValueReference
	TypeRValueReference
	TypeRecord
	TypeEnum
	TypeTypedef
	TypeElaborated
	TypeFunctionProto
	TypeFunctionNoProto
	TypeConstantArray
	TypeIncompleteArray
	TypeVariableArray
	TypeDependentSizedArray
	TypeMemberPointer
	TypeAuto
)

var typeKindNames = [...]string{
	TypeInvalid:             "Invalid",
	TypeUnexposed:           "Unexposed",
	TypeVoid:                "Void",
	TypeBool:                "Bool",
	TypeCharU:               "Char_U",
	TypeUChar:               "UChar",
	TypeChar8:               "Char8",
	TypeChar16:              "Char16",
	TypeChar32:              "Char32",
	TypeUShort:              "UShort",
	TypeUInt:                "UInt",
	TypeULong:               "ULong",
	TypeULongLong:           "ULongLong",
	TypeUInt128:             "UInt128",
	TypeCharS:               "Char_S",
	TypeSChar:               "SChar",
	TypeWChar:               "WChar",
	TypeShort:               "Short",
	TypeInt:                 "Int",
	TypeLong:                "Long",
	TypeLongLong:            "LongLong",
	TypeInt128:              "Int128",
	TypeHalf:                "Half",
	TypeFloat:               "Float",
	TypeDouble:              "Double",
	TypeLongDouble:          "LongDouble",
	TypeFloat128:            "Float128",
	TypeNullPtr:             "NullPtr",
	TypePointer:             "Pointer",
	TypeLValueReference:     "LValueReference",
	TypeRValueReference:     "RValueReference",
	TypeRecord:              "Record",
	TypeEnum:                "Enum",
	TypeTypedef:             "Typedef",
	TypeElaborated:          "Elaborated",
	TypeFunctionProto:       "FunctionProto",
	TypeFunctionNoProto:     "FunctionNoProto",
	TypeConstantArray:       "ConstantArray",
	TypeIncompleteArray:     "IncompleteArray",
	TypeVariableArray:       "VariableArray",
	TypeDependentSizedArray: "DependentSizedArray",
	TypeMemberPointer:       "MemberPointer",
	TypeAuto:                "Auto",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) && typeKindNames[k] != "" {
		return typeKindNames[k]
	}
	return "Unknown"
}

// IsReference reports lvalue and rvalue references
func (k TypeKind) IsReference() bool {
	return k == TypeLValueReference || k == TypeRValueReference
}

// IsArray reports every array kind
func (k TypeKind) IsArray() bool {
	switch k {
	case TypeConstantArray, TypeIncompleteArray, TypeVariableArray, TypeDependentSizedArray:
		return true
	}
	return false
}

// IsFunction reports function types with or without a prototype
func (k TypeKind) IsFunction() bool {
	return k == TypeFunctionProto || k == TypeFunctionNoProto
}

// IsBuiltin reports the builtin arithmetic, void and nullptr kinds
func (k TypeKind) IsBuiltin() bool {
	return k >= TypeVoid && k <= TypeNullPtr
}
