package help

const ColdstartYAML = `# doc2draft Quick Start

roles:
  lead: "h1, or a weaker heading with no stronger heading before it"
  sub_lead: "weaker heading after a stronger one, or a paragraph that is one bold run"
  body: "any other text"
  image: "node containing an <img>"
  empty: "no text, ignored"

heading_policy:
  promote: "first and strongest headings start paragraphs (default)"
  strict: "only h1 starts a paragraph"

commands:
  check_roles: |
    doc2draft inspect --link "https://shimo.im/docs/..."

  dry_run: |
    doc2draft fetch --link "https://shimo.im/docs/..." --dry-run

  publish: |
    doc2draft publish --link "https://shimo.im/docs/..."

  update_draft: |
    doc2draft publish --link "https://shimo.im/docs/..." --media-id MEDIA_ID

  rerender_after_edit: |
    doc2draft render --minify

  history: |
    doc2draft drafts
    doc2draft draft MEDIA_ID

outputs:
  paras.yaml: "paragraph tree, editable and re-renderable"
  result.html: "rendered article body"

config: |
  article:
    title: ""            # defaults to the document <title>
    author: ""
    thumb_media_id: ""   # cover image, required by the draft API
    media_id: ""         # set to update an existing draft
  wechat:
    app_id: ""
    app_secret: ""
  workers: 4
  heading_policy: promote
`
