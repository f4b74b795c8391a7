package rod

import (
	"context"
	"fmt"
	"strings"

	"healing-agent/internal/domain/entity"

	"github.com/go-rod/rod"
)

const maxForms = 10

// ExtractInteractables inventories the current page: interactive elements
// with ranked selector hints, form descriptors and raw outbound link targets.
func (b *BrowserAdapter) ExtractInteractables(ctx context.Context, maxElements int) ([]entity.InteractableElement, []entity.FormDescriptor, []string, error) {
	if !b.Alive() {
		return nil, nil, nil, fmt.Errorf("browser is closed")
	}

	var result []entity.InteractableElement
	seen := make(map[string]bool)

	add := func(el *rod.Element) {
		if el == nil || len(result) >= maxElements {
			return
		}

		visible, err := el.Visible()
		if err != nil || !visible {
			return
		}

		item := describeElement(el)
		item.SelectorHints = item.RankedSelectorHints()

		key := item.BestSelector()
		if key == "" || seen[key] {
			return
		}
		seen[key] = true

		result = append(result, item)
	}

	els, err := b.page.Elements("a, button, input, textarea, select, [role], [data-testid], [data-test-id], [aria-label]:not([aria-label=''])")
	if err == nil {
		for _, el := range els {
			add(el)
		}
	}

	forms := b.extractForms()
	links := b.extractLinks()

	return result, forms, links, nil
}

func describeElement(el *rod.Element) entity.InteractableElement {
	text, _ := el.Text()
	item := entity.InteractableElement{
		Tag:       elementTag(el),
		Role:      attr(el, "role"),
		TestID:    firstNonEmpty(attr(el, "data-testid"), attr(el, "data-test-id")),
		AriaLabel: attr(el, "aria-label"),
		ID:        attr(el, "id"),
		Name:      attr(el, "name"),
		Type:      attr(el, "type"),
		Text:      entity.TruncateText(text),
		Href:      attr(el, "href"),
		ParentTag: parentTag(el),
	}
	if shape, err := el.Shape(); err == nil {
		if box := shape.Box(); box != nil {
			item.Rect = &entity.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
		}
	}
	return item
}

func (b *BrowserAdapter) extractForms() []entity.FormDescriptor {
	var forms []entity.FormDescriptor

	els, err := b.page.Elements("form")
	if err != nil {
		return nil
	}
	for _, form := range els {
		if len(forms) >= maxForms {
			break
		}
		descriptor := entity.FormDescriptor{
			Action: attr(form, "action"),
			Method: strings.ToUpper(firstNonEmpty(attr(form, "method"), "get")),
		}
		fields, err := form.Elements("input, select, textarea")
		if err == nil {
			for _, f := range fields {
				required := false
				if r, err := f.Attribute("required"); err == nil && r != nil {
					required = true
				}
				descriptor.Fields = append(descriptor.Fields, entity.FormField{
					Name:     attr(f, "name"),
					Type:     attr(f, "type"),
					Required: required,
				})
			}
		}
		forms = append(forms, descriptor)
	}
	return forms
}

func (b *BrowserAdapter) extractLinks() []string {
	var links []string

	els, err := b.page.Elements("a[href]")
	if err != nil {
		return nil
	}
	for _, el := range els {
		if href := attr(el, "href"); href != "" {
			links = append(links, href)
		}
	}
	return links
}

func elementTag(el *rod.Element) string {
	v, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	return v.Value.Str()
}

func parentTag(el *rod.Element) string {
	v, err := el.Eval(`() => this.parentElement ? this.parentElement.tagName.toLowerCase() : ""`)
	if err != nil {
		return ""
	}
	return v.Value.Str()
}

func attr(el *rod.Element, name string) string {
	v, err := el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
