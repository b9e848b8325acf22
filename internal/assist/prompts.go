// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"mailcraft/internal/blocks"
	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
)

const htmlEmailRules = `You are an expert email designer producing marketing emails that render in every major client.

CRITICAL RULES:
1. Output ONLY one complete HTML document starting with <!DOCTYPE html>. No explanations, no code fences.
2. Use inline styles only. No <style> blocks, no external CSS, no JavaScript.
3. Keep the content inside a single centered container with max-width 600px.
4. Use {{snake_case}} placeholders for anything the author must supply:
   - image sources end in _src, _bg, _logo, _icon or _img (e.g. {{hero_src}})
   - link targets end in _link_url (e.g. {{cta_link_url}})
   - object-fit values end in _fit
   - everything else is text (e.g. {{first_name}})
5. Every <img> needs an alt attribute.`

const designRules = `You are an expert email designer working in a block editor.

Reply with ONLY a JSON object of the form {"blocks": [...]}. Each block is
{"id": "<string>", "type": "<type>", "props": {...}}. Available types and props:
- heading: text, level (1-3), alignment (left|center|right), color (#hex), fontFamily
- text: text (use \n for line breaks), alignment, color, fontSize (px), lineHeight (e.g. 1.6)
- image: src, alt, width (px, max 600), height ("auto" or px), linkUrl, alignment
- button: text, url, bgColor, textColor, borderRadius, fullWidth (bool), fontSize, paddingX, paddingY, alignment
- divider: color, thickness (px), widthPercent (10-100), style (solid|dashed|dotted)
- spacer: height (px)
- social: networks [{platform, url}] with platform one of %s, alignment, iconSize

Omitted props take defaults. Use {{snake_case}} placeholders for values the
author must supply: image sources end in _src, link targets end in _link_url.`

const blogRules = `You are an expert content writer. Write a complete blog post based on the user's description.

Rules:
- Output ONLY the article body as clean Markdown.
- Use ## and ### for subheadings (not #, the title is added separately).
- Do NOT wrap the output in code fences.
- Write 4-8 well-structured paragraphs with subheadings where appropriate.`

const subjectRules = `You are an email marketing copywriter. Generate exactly %d subject lines for the email
described below. Each line on its own, numbered. Keep each under 60 characters.
Do not include any other text or explanation.`

const altTextRules = `Describe the attached image as alt text for an email: one sentence, under 125
characters, no "image of" prefix. Output only the alt text.`

// SubjectCount is how many subject lines TaskSubjectLines asks for.
const SubjectCount = 5

// systemPrompt builds the system prompt for a task, followed by the theme
// brief when a theme is given.
func systemPrompt(t Task, theme *models.Theme) string {
	var base string
	switch t {
	case TaskGenerateHTML:
		base = htmlEmailRules
	case TaskEditHTML:
		base = htmlEmailRules + "\n\nYou will receive the current document. Apply the requested change and return the whole updated document. Keep every existing {{placeholder}} unless told otherwise."
	case TaskGenerateDesign:
		base = fmt.Sprintf(designRules, strings.Join(blocks.Platforms, ", "))
	case TaskEditDesign:
		base = fmt.Sprintf(designRules, strings.Join(blocks.Platforms, ", ")) +
			"\n\nYou will receive the current blocks. Apply the requested change and return the complete updated list. Keep the ids of blocks you do not remove."
	case TaskBlogPost:
		base = blogRules
	case TaskSubjectLines:
		base = fmt.Sprintf(subjectRules, SubjectCount)
	case TaskAltText:
		base = altTextRules
	}

	if brief := themeBrief(theme); brief != "" && t != TaskAltText {
		base += "\n\n" + brief
	}
	return base
}

// themeBrief renders the style prompt and palette of a theme.
func themeBrief(theme *models.Theme) string {
	if theme == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("BRAND THEME \"" + theme.Name + "\":\n")
	if s := strings.TrimSpace(theme.StylePrompt); s != "" {
		b.WriteString(s + "\n")
	}
	if len(theme.Palette) > 0 {
		names := make([]string, 0, len(theme.Palette))
		for k := range theme.Palette {
			names = append(names, k)
		}
		slices.Sort(names)
		b.WriteString("Palette:")
		for _, n := range names {
			b.WriteString(" " + n + "=" + theme.Palette[n])
		}
		b.WriteString("\n")
	}
	if theme.FontFamily != "" {
		b.WriteString("Font stack: " + theme.FontFamily + "\n")
	}
	return strings.TrimSpace(b.String())
}

// userPrompt builds the user message for a task, embedding the current
// document for edit tasks.
func userPrompt(t Task, in *Input) (string, error) {
	switch t {
	case TaskEditHTML:
		return fmt.Sprintf("CURRENT DOCUMENT:\n%s\n\nCHANGE REQUEST:\n%s", in.HTML, in.Prompt), nil
	case TaskEditDesign:
		raw, err := json.Marshal(in.Design)
		if err != nil {
			return "", fmt.Errorf("marshal design: %w", err)
		}
		return fmt.Sprintf("CURRENT BLOCKS:\n%s\n\nCHANGE REQUEST:\n%s", raw, in.Prompt), nil
	case TaskSubjectLines:
		var b strings.Builder
		if in.Prompt != "" {
			b.WriteString("Brief: " + in.Prompt + "\n\n")
		}
		b.WriteString("Email content:\n" + truncate(visibleText(in), 3000))
		return b.String(), nil
	case TaskAltText:
		if in.Prompt != "" {
			return "Context: " + in.Prompt, nil
		}
		return "Write the alt text.", nil
	default:
		return in.Prompt, nil
	}
}

// visibleText approximates the copy of an email for subject suggestions:
// the source HTML or compiled design with tags stripped.
func visibleText(in *Input) string {
	src := in.HTML
	if src == "" && len(in.Design) > 0 {
		src = blocks.CompileBody(in.Design, blocks.Options{})
	}
	var b strings.Builder
	inTag := false
	for _, r := range src {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	// Placeholders read better to a model as their names.
	for _, name := range placeholder.Extract(text) {
		text = strings.ReplaceAll(text, placeholder.Token(name), "["+name+"]")
	}
	return text
}
