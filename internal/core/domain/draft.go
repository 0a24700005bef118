package domain

import "fmt"

// Draft - черновик публикации: объект и список его собственников.
// Все методы возвращают ошибку и не меняют черновик, если операция отклонена.
type Draft struct {
	Property PropertyRecord
	Owners   []Owner
}

// NewDraft создает черновик с типом Casa, арендой и одним физическим лицом.
func NewDraft() (*Draft, error) {
	property, err := NewPropertyRecord(PropertyTypeHouse)
	if err != nil {
		return nil, err
	}
	d := &Draft{Property: property}
	if _, err := d.AddOwner(OwnerTypeNatural); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Draft) AddOwner(t OwnerType) (Owner, error) {
	if len(d.Owners) >= MaxOwners {
		return Owner{}, fmt.Errorf("%w: at most %d owners", ErrOwnerLimitReached, MaxOwners)
	}
	o, err := NewOwner(t)
	if err != nil {
		return Owner{}, err
	}
	d.Owners = append(d.Owners, o)
	return o, nil
}

func (d *Draft) RemoveOwner(id string) error {
	i, err := d.ownerIndex(id)
	if err != nil {
		return err
	}
	d.Owners = append(d.Owners[:i:i], d.Owners[i+1:]...)
	return nil
}

func (d *Draft) Owner(id string) (Owner, error) {
	i, err := d.ownerIndex(id)
	if err != nil {
		return Owner{}, err
	}
	return d.Owners[i], nil
}

func (d *Draft) UpdateOwnerField(id string, field OwnerField, value string) error {
	i, err := d.ownerIndex(id)
	if err != nil {
		return err
	}
	updated, err := SetOwnerField(d.Owners[i], field, value)
	if err != nil {
		return err
	}
	d.Owners[i] = updated
	return nil
}

func (d *Draft) ChangeOwnerType(id string, t OwnerType) error {
	i, err := d.ownerIndex(id)
	if err != nil {
		return err
	}
	updated, err := ChangeOwnerType(d.Owners[i], t)
	if err != nil {
		return err
	}
	d.Owners[i] = updated
	return nil
}

// AttachDocument кладет выбранный файл в слот документа собственника.
func (d *Draft) AttachDocument(id string, docType DocumentType, file PendingFile) error {
	i, err := d.ownerIndex(id)
	if err != nil {
		return err
	}
	if len(file.Content) == 0 {
		return ErrEmptyFile
	}
	o := d.Owners[i]
	if !DocumentApplies(o.Type(), docType) {
		return fmt.Errorf("%w: %s for owner type %s", ErrDocumentNotApplicable, docType, o.Type())
	}

	docs := make([]DocumentSlot, len(o.Documents))
	copy(docs, o.Documents)
	for j := range docs {
		if docs[j].Type == docType {
			f := file
			docs[j].Pending = &f
			docs[j].URL = ""
			docs[j].Path = ""
			d.Owners[i].Documents = docs
			return nil
		}
	}
	// Слот мог отсутствовать, если документы пришли от клиента без него.
	slot := newSlot(docType, false)
	for _, s := range RequiredDocuments(o.Type()) {
		if s.Type == docType {
			slot = s
		}
	}
	f := file
	slot.Pending = &f
	d.Owners[i].Documents = append(docs, slot)
	return nil
}

func (d *Draft) SetPropertyType(t PropertyType) error {
	updated, err := ApplyPropertyType(d.Property, t)
	if err != nil {
		return err
	}
	d.Property = updated
	return nil
}

// SetPropertyField меняет поле объекта. Очищенные и зафиксированные политикой поля не редактируются.
func (d *Draft) SetPropertyField(f PropertyField, value string) error {
	if policy, ok := PropertyTypePolicies[d.Property.PropertyType]; ok && !policy.Applicable(f) {
		return fmt.Errorf("%w: %s for property type %s", ErrFieldNotApplicable, f, d.Property.PropertyType)
	}
	updated, err := d.Property.WithField(f, value)
	if err != nil {
		return err
	}
	d.Property = updated
	return nil
}

func (d *Draft) Validate() ErrorMap {
	return ValidateDraft(*d)
}

// NormalizeDraft приводит черновик, пришедший снаружи, к инвариантам модели:
// поля объекта - к политике его типа, слоты документов - к типу собственника.
func NormalizeDraft(d Draft) Draft {
	if normalized, err := ApplyPropertyType(d.Property, d.Property.PropertyType); err == nil {
		d.Property = normalized
	}
	owners := make([]Owner, len(d.Owners))
	for i, o := range d.Owners {
		o.Documents = MergeDocuments(o.Documents, o.Type())
		owners[i] = o
	}
	d.Owners = owners
	return d
}

// ValidateDraft объединяет ошибки объекта и собственников в одну карту.
func ValidateDraft(d Draft) ErrorMap {
	errs := ValidateProperty(d.Property)
	errs.Merge(ValidateOwners(d.Owners))
	return errs
}

func (d *Draft) ownerIndex(id string) (int, error) {
	for i := range d.Owners {
		if d.Owners[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrOwnerNotFound, id)
}
