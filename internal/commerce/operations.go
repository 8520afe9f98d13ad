package commerce

const cartFragment = `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  buyerIdentity {
    email
    customer { id email }
  }
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
    totalTaxAmount { amount currencyCode }
  }
  lines(first: 100) {
    nodes {
      id
      quantity
      cost {
        amountPerQuantity { amount currencyCode }
        totalAmount { amount currencyCode }
      }
      merchandise {
        ... on ProductVariant {
          id
          title
          quantityAvailable
          price { amount currencyCode }
          product { id handle title }
        }
      }
    }
    pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
  }
}`

const userErrorFields = `userErrors { code field message }`

const customerUserErrorFields = `customerUserErrors { code field message }`

const createCartMutation = `
mutation CreateCart {
  cartCreate {
    cart { id }
    ` + userErrorFields + `
  }
}`

const validateCartQuery = `
query ValidateCart($cartId: ID!) {
  cart(id: $cartId) { id }
}`

const viewCartQuery = `
query ViewCart($cartId: ID!, $language: LanguageCode) @inContext(language: $language) {
  cart(id: $cartId) { ...CartFields }
}` + cartFragment

const addCartLineMutation = `
mutation AddCartLine($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    ` + userErrorFields + `
  }
}` + cartFragment

const updateCartLineMutation = `
mutation UpdateCartLine($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    ` + userErrorFields + `
  }
}` + cartFragment

const removeCartLineMutation = `
mutation RemoveCartLine($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    ` + userErrorFields + `
  }
}` + cartFragment

const updateBuyerIdentityMutation = `
mutation UpdateBuyerIdentity($cartId: ID!, $buyerIdentity: CartBuyerIdentityInput!) {
  cartBuyerIdentityUpdate(cartId: $cartId, buyerIdentity: $buyerIdentity) {
    cart { ...CartFields }
    ` + userErrorFields + `
  }
}` + cartFragment

const createAccessTokenMutation = `
mutation CustomerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorFields + `
  }
}`

const renewAccessTokenMutation = `
mutation CustomerAccessTokenRenew($customerAccessToken: String!) {
  customerAccessTokenRenew(customerAccessToken: $customerAccessToken) {
    customerAccessToken { accessToken expiresAt }
    ` + userErrorFields + `
  }
}`

const deleteAccessTokenMutation = `
mutation CustomerAccessTokenDelete($customerAccessToken: String!) {
  customerAccessTokenDelete(customerAccessToken: $customerAccessToken) {
    deletedAccessToken
    deletedCustomerAccessTokenId
    ` + userErrorFields + `
  }
}`

const createCustomerMutation = `
mutation CustomerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer { id }
    ` + customerUserErrorFields + `
  }
}`

const mailingAddressFields = `id firstName lastName company address1 address2 city province country zip phone`

const customerQuery = `
query Customer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    id firstName lastName email phone
    defaultAddress { ` + mailingAddressFields + ` }
  }
}`

const customerOrdersQuery = `
query CustomerOrders($customerAccessToken: String!, $first: Int, $last: Int, $after: String, $before: String) {
  customer(customerAccessToken: $customerAccessToken) {
    orders(first: $first, last: $last, after: $after, before: $before, reverse: true) {
      nodes {
        id name orderNumber processedAt financialStatus fulfillmentStatus statusUrl
        currentTotalPrice { amount currencyCode }
      }
      pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
    }
  }
}`

const customerAddressesQuery = `
query CustomerAddresses($customerAccessToken: String!, $first: Int, $last: Int, $after: String, $before: String) {
  customer(customerAccessToken: $customerAccessToken) {
    addresses(first: $first, last: $last, after: $after, before: $before) {
      nodes { ` + mailingAddressFields + ` }
      pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
    }
  }
}`

const createCheckoutMutation = `
mutation CheckoutCreate($input: CheckoutCreateInput!, $language: LanguageCode) @inContext(language: $language) {
  checkoutCreate(input: $input) {
    checkout { id webUrl }
    checkoutUserErrors { code field message }
  }
}`

const productFields = `
id handle title availableForSale
priceRange {
  minVariantPrice { amount currencyCode }
  maxVariantPrice { amount currencyCode }
}
featuredImage { url altText }`

const collectionProductsQuery = `
query CollectionProducts(
  $handle: String!, $first: Int, $last: Int, $after: String, $before: String,
  $filters: [ProductFilter!], $sortKey: ProductCollectionSortKeys, $reverse: Boolean,
  $language: LanguageCode
) @inContext(language: $language) {
  collection(handle: $handle) {
    id handle title description
    products(first: $first, last: $last, after: $after, before: $before, filters: $filters, sortKey: $sortKey, reverse: $reverse) {
      nodes { ` + productFields + ` }
      pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
    }
  }
}`

const productQuery = `
query Product($id: ID!, $language: LanguageCode) @inContext(language: $language) {
  product(id: $id) { ` + productFields + ` }
}`

const collectionQuery = `
query Collection($id: ID!, $language: LanguageCode) @inContext(language: $language) {
  collection(id: $id) {
    id handle title description
    products(first: 8) {
      nodes { ` + productFields + ` }
      pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
    }
  }
}`
