package main

import (
	"fmt"

	"github.com/restbound/restbound/schema"
)

// builtinRegistry declares the resource graph the CLI works against. Targets
// are thunks so the mutual User/Company and User/BlogPost references resolve
// regardless of declaration order.
func builtinRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()

	var user, company, blogPost, comment *schema.Descriptor

	company = schema.NewBuilder("Company").
		LazyRelation("owner", func() *schema.Descriptor { return user }).
		LazyCollection("employees", func() *schema.Descriptor { return user }).
		BaseMethod("label", func(call *schema.Call) (any, error) {
			return call.StringField("name")
		}).
		Method("label", func(call *schema.Call) (any, error) {
			base, err := call.Super()
			if err != nil {
				return nil, err
			}
			domain, err := call.StringField("domain")
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("%v (%s)", base, domain), nil
		}).
		Build()

	user = schema.NewBuilder("User").
		LazyRelation("company", func() *schema.Descriptor { return company }).
		LazyCollection("posts", func() *schema.Descriptor { return blogPost }).
		Method("displayLabel", func(call *schema.Call) (any, error) {
			return call.StringField("name")
		}).
		Build()

	comment = schema.NewBuilder("Comment").
		LazyRelation("author", func() *schema.Descriptor { return user }).
		Build()

	blogPost = schema.NewBuilder("BlogPost").
		LazyRelation("author", func() *schema.Descriptor { return user }).
		LazyCollection("recentComments", func() *schema.Descriptor { return comment }).
		Method("summary", func(call *schema.Call) (any, error) {
			title, err := call.StringField("title")
			if err != nil {
				return nil, err
			}
			body, err := call.StringField("body")
			if err != nil {
				return nil, err
			}
			if len(body) > 80 {
				body = body[:80] + "..."
			}
			return title + ": " + body, nil
		}).
		Build()

	for _, d := range []*schema.Descriptor{company, user, comment, blogPost} {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}
