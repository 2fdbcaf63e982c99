package sqlinline

const QInsertBatch = `--sql 3d773b59-3a76-4ab9-b1c1-9715096b898f
insert into allocation_batches (
  id, batch_type, request_type,
  original_pledge_id, original_payment_id, new_pledge_id, new_payment_id,
  donor_id, donor_name, donor_phone,
  original_amount_pence, additional_amount_pence, total_amount_pence,
  approval_status, package_id, requested_at
)
values (
  gen_random_uuid(), $1::text, $2::text,
  $3::text, $4::text, $5::text, $6::text,
  $7::text, $8::text, $9::text,
  $10::bigint, $11::bigint, $12::bigint,
  'pending', $13::text, now()
)
returning id, requested_at;
`

const QGetBatch = `--sql 44ce19f5-b5f3-490f-8e84-4a90a796fafa
select id, batch_type, request_type,
       original_pledge_id, original_payment_id, new_pledge_id, new_payment_id,
       donor_id, donor_name, donor_phone,
       original_amount_pence, additional_amount_pence, total_amount_pence,
       approval_status, allocated_cell_ids, allocated_area, package_id,
       requested_at, approved_at, rejected_at
from allocation_batches
where id = $1::uuid;
`

const QGetBatchForUpdate = `--sql afcbf1f0-b84e-4268-9384-7e2c24f0b5db
select id, batch_type, request_type,
       original_pledge_id, original_payment_id, new_pledge_id, new_payment_id,
       donor_id, donor_name, donor_phone,
       original_amount_pence, additional_amount_pence, total_amount_pence,
       approval_status, allocated_cell_ids, allocated_area, package_id,
       requested_at, approved_at, rejected_at
from allocation_batches
where id = $1::uuid
for update;
`

const QApproveBatch = `--sql 773b91ab-942b-40f0-a2f3-8fa5f0fa5ebb
update allocation_batches
set approval_status = 'approved',
    allocated_cell_ids = $2::text[],
    allocated_area = $3::float8,
    approved_by = $4::text,
    approved_at = now()
where id = $1::uuid and approval_status = 'pending';
`

const QRejectBatch = `--sql 513f3945-6dcf-436d-adc4-cf9e861387b2
update allocation_batches
set approval_status = 'rejected',
    rejected_at = now()
where id = $1::uuid and approval_status = 'pending';
`

const QCancelBatch = `--sql fce32621-382c-47f7-92b6-4d1adf3d0b1e
update allocation_batches
set approval_status = 'cancelled'
where id = $1::uuid and approval_status = 'approved';
`
